package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// FacebookHandler exposes Graph API reads and manual messages for a connected page
type FacebookHandler struct {
	facebookService FacebookServiceInterface
}

// NewFacebookHandler creates a new FacebookHandler
func NewFacebookHandler(facebookService FacebookServiceInterface) *FacebookHandler {
	return &FacebookHandler{
		facebookService: facebookService,
	}
}

// GetPosts lists the posts of a page
func (h *FacebookHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	posts, err := h.facebookService.Posts(r.Context(), userID, pageID, graphPagination(r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, posts)
}

// GetPostComments lists the comments of one post of a page
func (h *FacebookHandler) GetPostComments(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, constants.ParamPostID)
	if postID == "" {
		utils.BadRequest(w, "Post ID is required", nil)
		return
	}

	comments, err := h.facebookService.PostComments(r.Context(), userID, pageID, postID, graphPagination(r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, comments)
}

// GetConversations lists the Messenger conversations of a page
func (h *FacebookHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	conversations, err := h.facebookService.Conversations(r.Context(), userID, pageID, graphPagination(r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, conversations)
}

// GetConversationMessages lists the messages of one conversation
func (h *FacebookHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	conversationID := chi.URLParam(r, constants.ParamConversationID)
	if conversationID == "" {
		utils.BadRequest(w, "Conversation ID is required", nil)
		return
	}

	messages, err := h.facebookService.ConversationMessages(r.Context(), userID, pageID, conversationID, graphPagination(r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, messages)
}

// GetUserInfo returns the public profile of a user as seen by the page
func (h *FacebookHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	ownerID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	userID := chi.URLParam(r, constants.ParamUserID)
	if userID == "" {
		utils.BadRequest(w, "User ID is required", nil)
		return
	}

	info, err := h.facebookService.UserInfo(r.Context(), ownerID, pageID, userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, info)
}

// SendMessage sends a Messenger message on behalf of a page
func (h *FacebookHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, pageID, ok := ownerAndPage(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	result, err := h.facebookService.SendMessage(r.Context(), userID, pageID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, result)
}
