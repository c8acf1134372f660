package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/princekumarofficial/marketplace-service/internal/utils/jwt"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

type contextKey string

const UserIDKey contextKey = "userID"

var (
	errNoAuthHeader   = errors.New("Authorization header required")
	errBadAuthScheme  = errors.New("Invalid authorization header format")
	errNoToken        = errors.New("Token not provided")
	errInvalidSession = errors.New("Invalid token")
)

// BearerToken returns the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoAuthHeader
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errBadAuthScheme
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errNoToken
	}

	return token, nil
}

// AuthMiddleware validates the bearer token and puts the user ID on the request context
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(err))
				return
			}

			userID, err := jwt.ExtractUserIDFromToken(token, jwtSecret)
			if err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errInvalidSession))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// ErrNotAdmin is returned with 403 by AdminOnly.
var ErrNotAdmin = errors.New("admin access required")

// AdminOnly admits only the listed user IDs. It must run inside AuthMiddleware.
func AdminOnly(adminIDs []string) func(http.Handler) http.Handler {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("user not authenticated")))
				return
			}
			if _, ok := admins[userID]; !ok {
				slog.Warn("Admin route refused", slog.String("user_id", userID), slog.String("path", r.URL.Path))
				response.WriteJSON(w, http.StatusForbidden, response.GeneralError(ErrNotAdmin))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
