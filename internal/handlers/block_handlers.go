package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// BlockHandler handles blocked user routes
type BlockHandler struct {
	blockService BlockServiceInterface
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(blockService BlockServiceInterface) *BlockHandler {
	return &BlockHandler{
		blockService: blockService,
	}
}

// ListBlockedUsers returns the block records of a page.
// Supported query parameters: search, reason, active, limit, offset.
func (h *BlockHandler) ListBlockedUsers(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := utils.GetPaginationParams(r)

	filter := models.BlockedUserFilter{
		PageID: pageID,
		Search: strings.TrimSpace(query.Get(constants.QueryParamSearch)),
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	if reason := query.Get(constants.QueryParamReason); reason != "" {
		filter.Reason = models.BlockReason(reason)
		if !filter.Reason.Valid() {
			utils.BadRequest(w, "Invalid block reason", map[string]string{constants.QueryParamReason: reason})
			return
		}
	}

	active, err := parseBoolParam(query.Get(constants.QueryParamActive))
	if err != nil {
		utils.BadRequest(w, "Invalid active flag", map[string]string{constants.QueryParamActive: query.Get(constants.QueryParamActive)})
		return
	}
	filter.Active = active

	users, total, err := h.blockService.List(r.Context(), userID, filter)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, users, params, total)
}

// GetBlockStats returns the active block counts of a page
func (h *BlockHandler) GetBlockStats(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	stats, err := h.blockService.Stats(r.Context(), userID, pageID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

// BlockUser creates a manual block
func (h *BlockHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	var req models.BlockUserRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	blocked, err := h.blockService.Block(r.Context(), userID, pageID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, blocked)
}

// UnblockUser deactivates the active block of a user
func (h *BlockHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	ownerID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	blockedUserID := chi.URLParam(r, constants.ParamUserID)
	if blockedUserID == "" {
		utils.BadRequest(w, "User ID is required", nil)
		return
	}

	blocked, err := h.blockService.Unblock(r.Context(), ownerID, pageID, blockedUserID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, blocked)
}
