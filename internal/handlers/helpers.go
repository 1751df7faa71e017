package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

const dateLayout = "2006-01-02"

// ownerAndPage reads the authenticated owner and the page ID route parameter.
// It writes the error response itself and returns false when either is missing.
func ownerAndPage(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return 0, "", false
	}

	pageID := chi.URLParam(r, constants.ParamPageID)
	if pageID == "" {
		utils.BadRequest(w, "Page ID is required", nil)
		return 0, "", false
	}

	return userID, pageID, true
}

// graphPagination converts the limit/offset query into a Graph window
func graphPagination(r *http.Request) graph.Pagination {
	params := utils.GetPaginationParams(r)
	return graph.Pagination{Limit: params.Limit, Offset: params.Offset}
}

// parseDateParam accepts RFC 3339 timestamps or plain dates. A plain end
// date covers the whole day.
func parseDateParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// parseBoolParam parses an optional boolean query parameter
func parseBoolParam(value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
