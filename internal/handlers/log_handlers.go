package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// LogHandler handles action log routes
type LogHandler struct {
	logService LogServiceInterface
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(logService LogServiceInterface) *LogHandler {
	return &LogHandler{
		logService: logService,
	}
}

// ListLogs returns the action log of a page, newest first.
// Supported query parameters: type, status, start_date, end_date, limit, offset.
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := utils.GetPaginationParams(r)

	filter := models.ActionLogFilter{
		PageID: pageID,
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	if logType := query.Get(constants.QueryParamType); logType != "" {
		filter.Type = models.LogType(logType)
		if !filter.Type.Valid() {
			utils.BadRequest(w, "Invalid log type", map[string]string{constants.QueryParamType: logType})
			return
		}
	}

	if status := query.Get(constants.QueryParamStatus); status != "" {
		filter.Status = models.LogStatus(status)
		if !filter.Status.Valid() {
			utils.BadRequest(w, "Invalid log status", map[string]string{constants.QueryParamStatus: status})
			return
		}
	}

	var err error
	if filter.StartDate, err = parseDateParam(query.Get(constants.QueryParamStartDate), false); err != nil {
		utils.BadRequest(w, "Invalid start date", map[string]string{constants.QueryParamStartDate: "must be YYYY-MM-DD or RFC 3339"})
		return
	}
	if filter.EndDate, err = parseDateParam(query.Get(constants.QueryParamEndDate), true); err != nil {
		utils.BadRequest(w, "Invalid end date", map[string]string{constants.QueryParamEndDate: "must be YYYY-MM-DD or RFC 3339"})
		return
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		utils.BadRequest(w, "End date is before start date", nil)
		return
	}

	logs, total, err := h.logService.List(r.Context(), userID, filter)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, logs, params, total)
}

// GetLogStats returns per-type and per-status counts for a page
func (h *LogHandler) GetLogStats(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	stats, err := h.logService.Stats(r.Context(), userID, pageID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

// CleanupLogs deletes log entries older than the retention window
func (h *LogHandler) CleanupLogs(w http.ResponseWriter, r *http.Request) {
	result, err := h.logService.Cleanup(r.Context())
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	log.Info().
		Int64("deleted", result.Deleted).
		Time("cutoff", result.Cutoff).
		Msg("Action logs cleaned up on request")

	utils.JSON(w, http.StatusOK, result)
}
