package utils_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	utils.JSON(rr, http.StatusOK, map[string]string{"page_id": "P1"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decodeResponse(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"page_id": "P1"}, resp.Data)
	assert.Nil(t, resp.Error)

	rr = httptest.NewRecorder()
	utils.JSON(rr, http.StatusBadRequest, nil)
	assert.False(t, decodeResponse(t, rr).Success)
}

func TestErrorFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        *utils.AppError
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{"not found", utils.NewNotFoundError("Page", "P1"), http.StatusNotFound, "not_found", ""},
		{"conflict", utils.NewConflictError("User is already blocked"), http.StatusConflict, "duplicate_resource", ""},
		{"upstream", utils.NewUpstreamError(errors.New("400")), http.StatusBadGateway, "upstream_error", ""},
		{"field validation", utils.NewValidationError("user_id", "This field is required"), http.StatusBadRequest, "validation_error", "user_id"},
		{
			"details validation",
			utils.NewValidationErrorWithDetails("Multiple validation errors", map[string]string{"reason": "bad"}),
			http.StatusBadRequest, "validation_error", "reason",
		},
		{"internal", utils.NewInternalServerError(errors.New("db")), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			utils.ErrorFromAppError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			resp := decodeResponse(t, rr)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantDetail != "" {
				assert.Contains(t, resp.Error.Details, tt.wantDetail)
			}
		})
	}
}

func TestPaginated(t *testing.T) {
	rr := httptest.NewRecorder()
	utils.Paginated(rr, http.StatusOK, []string{"a", "b"}, utils.PaginationParams{Limit: 2, Offset: 0}, 5)

	resp := decodeResponse(t, rr)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Limit)
	assert.Equal(t, 5, resp.Meta.TotalItems)
	assert.True(t, resp.Meta.HasMore)

	rr = httptest.NewRecorder()
	utils.Paginated(rr, http.StatusOK, []string{"e"}, utils.PaginationParams{Limit: 2, Offset: 4}, 5)
	assert.False(t, decodeResponse(t, rr).Meta.HasMore)
}

func TestPlainText(t *testing.T) {
	rr := httptest.NewRecorder()
	utils.PlainText(rr, http.StatusOK, "CHALLENGE_ACCEPTED")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "CHALLENGE_ACCEPTED", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}

func TestTooManyRequests(t *testing.T) {
	rr := httptest.NewRecorder()
	utils.TooManyRequests(rr, 3)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "3", rr.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeResponse(t, rr).Error.Code)
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"explicit", "?limit=10&offset=20", 10, 20},
		{"clamped limit", "?limit=5000", 200, 0},
		{"zero limit", "?limit=0", 50, 0},
		{"negative offset", "?offset=-3", 50, 0},
		{"garbage", "?limit=abc&offset=xyz", 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/pages/P1/logs"+tt.query, nil)
			params := utils.GetPaginationParams(req)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}
