package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/middleware"
)

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(&config.JWTSettings{Secret: "test-secret", Issuer: "pageguard-auth"})
	token, err := jwtService.IssueToken(7, time.Minute)
	assert.NoError(t, err)

	var userID int64
	handler := middleware.JWTAuth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ = auth.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/pages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(7), userID)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/pages", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
