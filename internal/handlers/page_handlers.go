package handlers

import (
	"net/http"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// PageHandler handles page-related routes
type PageHandler struct {
	pageService PageServiceInterface
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(pageService PageServiceInterface) *PageHandler {
	return &PageHandler{
		pageService: pageService,
	}
}

// bannedWordsResponse is the body returned by the banned word routes
type bannedWordsResponse struct {
	Words []string `json:"words"`
}

// ConnectPage connects a new Facebook page for the current user
func (h *PageHandler) ConnectPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.ConnectPageRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	page, err := h.pageService.Connect(r.Context(), userID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, page)
}

// ListPages returns the pages of the current user
func (h *PageHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	pages, err := h.pageService.ListPages(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, pages)
}

// GetPage returns a single page
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	page, err := h.pageService.GetPage(r.Context(), userID, pageID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, page)
}

// UpdateSettings applies a partial update to the moderation settings of a page
func (h *PageHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	var req models.UpdatePageSettingsRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	page, err := h.pageService.UpdateSettings(r.Context(), userID, pageID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, page)
}

// ToggleBot switches moderation on or off
func (h *PageHandler) ToggleBot(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	var req models.ToggleBotRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	page, err := h.pageService.SetBotEnabled(r.Context(), userID, pageID, *req.Enabled)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, page)
}

// GetBannedWords returns the banned words of a page
func (h *PageHandler) GetBannedWords(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	words, err := h.pageService.GetBannedWords(r.Context(), userID, pageID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, bannedWordsResponse{Words: words})
}

// AddBannedWords adds words to the banned word list of a page
func (h *PageHandler) AddBannedWords(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	var req models.BannedWordsRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	words, err := h.pageService.AddBannedWords(r.Context(), userID, pageID, req.Words)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, bannedWordsResponse{Words: words})
}

// RemoveBannedWords removes words from the banned word list of a page
func (h *PageHandler) RemoveBannedWords(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	var req models.BannedWordsRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	words, err := h.pageService.RemoveBannedWords(r.Context(), userID, pageID, req.Words)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, bannedWordsResponse{Words: words})
}
