package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status  string      `json:"status"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var ErrEmptyBody = errors.New("request body cannot be empty")

var validate = validator.New()

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errorMessages string
	for _, err := range errs {
		errorMessages += err.Field() + ": " + err.Tag() + "; "
	}

	return Response{
		Status: StatusError,
		Error:  errorMessages,
	}
}

func RequestOK(message string, data interface{}) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// Validate runs the struct validator over v.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// DecodeValid decodes the JSON body into v and validates it. On failure it
// writes a 400 and returns false.
func DecodeValid(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		WriteJSON(w, http.StatusBadRequest, GeneralError(ErrEmptyBody))
		return false
	} else if err != nil {
		WriteJSON(w, http.StatusBadRequest, GeneralError(err))
		return false
	}

	return CheckValid(w, v)
}

// CheckValid validates v and writes a 400 on failure.
func CheckValid(w http.ResponseWriter, v interface{}) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		WriteJSON(w, http.StatusBadRequest, ValidationError(ve))
		return false
	}
	WriteJSON(w, http.StatusBadRequest, GeneralError(err))
	return false
}
