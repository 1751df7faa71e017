// Package auth provides bearer token authentication for the admin API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// UserIDContextKey is the context key for storing the authenticated user ID.
const UserIDContextKey ContextKey = constants.UserIDContextKey

// RequireAuth returns a middleware that only lets requests with a valid
// bearer token through. The token's user id is stored in the request context.
//
// Parameters:
//   - validator: Validates the bearer token
//
// Returns:
//   - A middleware function that requires authentication
func RequireAuth(validator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				log.Info().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Authentication failed")

				var appErr *utils.AppError
				if errors.As(err, &appErr) {
					utils.ErrorFromAppError(w, appErr)
					return
				}
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerTokenPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerTokenPrefix))
	return token, token != ""
}

// GetUserID extracts the authenticated user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(int64)
	return userID, ok
}

// WithUserID returns a context carrying an authenticated user ID
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}
