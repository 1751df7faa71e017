package middleware

import (
	"net/http"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
)

// JWTAuth is a middleware that requires a valid bearer token
func JWTAuth(validator auth.JWTValidator) func(http.Handler) http.Handler {
	return auth.RequireAuth(validator)
}
