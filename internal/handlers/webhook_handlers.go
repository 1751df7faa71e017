package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
	"github.com/yasinhessnawi1/pageguard/internal/webhook"
)

// WebhookHandler handles the Facebook webhook endpoint
type WebhookHandler struct {
	dispatcher WebhookDispatcher
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(dispatcher WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
	}
}

// Verify answers the subscription handshake with the challenge as plain text
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	challenge, err := h.dispatcher.Verify(
		query.Get(constants.QueryParamHubMode),
		query.Get(constants.QueryParamHubVerifyToken),
		query.Get(constants.QueryParamHubChallenge),
	)
	if err != nil {
		log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Webhook verification rejected")
		utils.Forbidden(w, constants.MsgVerificationFailed)
		return
	}

	utils.PlainText(w, http.StatusOK, challenge)
}

// Receive accepts a webhook delivery. Structurally valid deliveries are
// always acknowledged with 200 "OK", whatever happened to their events.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxWebhookBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.Error(w, http.StatusRequestEntityTooLarge, constants.CodeBadRequest, constants.MsgRequestBodyTooLarge, nil)
			return
		}
		log.Error().Err(err).Msg("Failed to read webhook body")
		utils.BadRequest(w, constants.MsgEmptyRequestBody, nil)
		return
	}

	if err := h.dispatcher.Authenticate(body, r.Header.Get(constants.HeaderHubSignature256)); err != nil {
		log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Webhook signature rejected")
		utils.Unauthorized(w, constants.MsgInvalidSignature)
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), body)
	if err != nil {
		if errors.Is(err, webhook.ErrMalformedPayload) {
			utils.Error(w, http.StatusInternalServerError, constants.CodeInternalError, constants.MsgMalformedJSON, nil)
			return
		}
		utils.InternalServerError(w, err)
		return
	}

	log.Debug().
		Str("delivery_id", result.DeliveryID).
		Str("object", result.Object).
		Int("events", result.Events).
		Int("handled", result.Handled).
		Int("skipped", result.Skipped).
		Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).
		Msg("Webhook delivery processed")

	utils.PlainText(w, http.StatusOK, "OK")
}
