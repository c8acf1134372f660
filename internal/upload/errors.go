package upload

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two network steps.
var (
	ErrTicketRequest = errors.New("failed to get S3 URL")
	ErrBlobUpload    = errors.New("failed to upload image to S3")
)

// Step names the pipeline stage that failed.
type Step string

const (
	StepTicket Step = "ticket"
	StepUpload Step = "upload"
)

// Error reports a fatal failure for a single file.
type Error struct {
	Step       Step
	FileName   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s step failed for %s", e.Step, e.FileName)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the step sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UserMessage is the single line shown in the blocking alert.
func (e *Error) UserMessage() string {
	if e.Step == StepTicket {
		return "Failed to get S3 URL"
	}
	return "Failed to upload image to S3"
}

func (e *Error) sentinel() error {
	if e.Step == StepTicket {
		return ErrTicketRequest
	}
	return ErrBlobUpload
}

// BatchError is returned when one file of a batch fails. Files before Index
// were uploaded and are not rolled back; files after it were never attempted.
type BatchError struct {
	Index    int
	Uploaded []string
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch aborted at file %d after %d uploads: %v", e.Index, len(e.Uploaded), e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message of the failing step.
func UserMessage(err error) string {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return "Upload failed"
}
