package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
)

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		db             *mockDB
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "healthy",
			db:             &mockDB{},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
		{
			name:           "unhealthy",
			db:             &mockDB{healthErr: errors.New("database connection failed")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"service_unavailable"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig(), tt.db)

			rr := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "test-version", body.Data["version"])
	assert.Equal(t, "testing", body.Data["environment"])
}

func TestServerRoutePatterns(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	registered := map[string]bool{}
	err := chi.Walk(s.GetRouter(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+strings.TrimSuffix(route, "/")] = true
		return nil
	})
	require.NoError(t, err)

	for _, route := range []string{
		"GET /health",
		"GET /version",
		"GET /webhook",
		"POST /webhook",
		"GET /api/pages",
		"POST /api/pages",
		"GET /api/pages/{pageID}",
		"PUT /api/pages/{pageID}/settings",
		"PUT /api/pages/{pageID}/bot",
		"GET /api/pages/{pageID}/banned-words",
		"POST /api/pages/{pageID}/banned-words",
		"DELETE /api/pages/{pageID}/banned-words",
		"GET /api/pages/{pageID}/blocked-users",
		"POST /api/pages/{pageID}/blocked-users",
		"GET /api/pages/{pageID}/blocked-users/stats",
		"PUT /api/pages/{pageID}/blocked-users/{userID}/unblock",
		"GET /api/pages/{pageID}/logs",
		"GET /api/pages/{pageID}/logs/stats",
		"DELETE /api/logs/cleanup",
		"GET /api/pages/{pageID}/posts",
		"GET /api/pages/{pageID}/posts/{postID}/comments",
		"GET /api/pages/{pageID}/conversations",
		"GET /api/pages/{pageID}/conversations/{conversationID}/messages",
		"GET /api/pages/{pageID}/users/{userID}",
		"POST /api/pages/{pageID}/messages",
	} {
		assert.True(t, registered[route], "route %s is not registered", route)
	}
}

func TestWebhookVerificationThroughRouter(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	rr := serve(s, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=1158201444", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1158201444", rr.Body.String())

	rr = serve(s, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1158201444", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdminAPIRequiresToken(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := auth.NewJWTService(&s.Config.JWT).IssueToken(42, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = serve(s, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Corner Shop")
	assert.Equal(t, "no-cache, no-store, no-transform, must-revalidate, private, max-age=0", rr.Header().Get("Cache-Control"))
}

func TestLogCleanupIsRateLimited(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	token, err := auth.NewJWTService(&s.Config.JWT).IssueToken(42, time.Minute)
	require.NoError(t, err)

	cleanup := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/logs/cleanup", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serve(s, req)
	}

	rr := cleanup()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"deleted":3`)

	rr = cleanup()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Other endpoints keep their own budget
	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(s, req).Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s, httptest.NewRequest(http.MethodPatch, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCorsMiddleware(t *testing.T) {
	s := newTestServer(t, testConfig(), &mockDB{})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/pages", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rr := serve(s, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "https://dashboard.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/version", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		rr := serve(s, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://dashboard.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/version", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr := serve(s, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard without credentials", func(t *testing.T) {
		handler := corsMiddleware([]string{"*"}, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://any.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "https://any.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	})
}
