// Package webhook receives Facebook Page webhook deliveries, records them and
// routes every contained event of a moderated page to the moderation pipeline.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/dedupe"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/moderation"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

const (
	// hubModeSubscribe is the only handshake mode accepted
	hubModeSubscribe = "subscribe"

	// unknownPageID is logged when a delivery names no page
	unknownPageID = "unknown"
)

// PageResolver looks up the page an entry belongs to. It returns a not found
// error for pages that are unknown, inactive or have the bot disabled.
type PageResolver interface {
	GetModeratedPage(ctx context.Context, pageID string) (*models.Page, error)
}

// EventHandler runs the moderation pipeline for one event
type EventHandler interface {
	Handle(ctx context.Context, page *models.Page, ev moderation.Event) (moderation.Decision, error)
}

// ActionLogger appends action log entries
type ActionLogger interface {
	Create(ctx context.Context, entry *models.ActionLog) error
}

// Options configures a Dispatcher
type Options struct {
	VerifyToken string
	AppSecret   string

	// Dedupe is optional. When nil every event is processed.
	Dedupe       dedupe.Store
	DedupeWindow time.Duration
}

// Result summarises what a delivery contained and what happened to it
type Result struct {
	DeliveryID string
	Object     string
	Entries    int
	Events     int
	Handled    int
	Skipped    int
	Duplicates int
	Failed     int
}

// Dispatcher handles the webhook subscription handshake and incoming deliveries
type Dispatcher struct {
	opts    Options
	pages   PageResolver
	handler EventHandler
	logs    ActionLogger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(opts Options, pages PageResolver, handler EventHandler, logs ActionLogger) *Dispatcher {
	if opts.DedupeWindow <= 0 {
		opts.DedupeWindow = constants.DefaultDedupeWindow
	}
	return &Dispatcher{
		opts:    opts,
		pages:   pages,
		handler: handler,
		logs:    logs,
	}
}

// Verify answers the subscription handshake. The challenge is echoed back
// only for mode "subscribe" with the configured verify token.
func (d *Dispatcher) Verify(mode, token, challenge string) (string, error) {
	if mode != hubModeSubscribe {
		return "", &AuthorizationError{Mode: mode, Reason: "unsupported mode"}
	}
	if d.opts.VerifyToken == "" || token != d.opts.VerifyToken {
		return "", &AuthorizationError{Mode: mode, Reason: "verify token mismatch"}
	}

	log.Info().Msg("Webhook subscription verified")
	return challenge, nil
}

// Authenticate checks the X-Hub-Signature-256 header of a delivery. It
// accepts every body when no app secret is configured.
func (d *Dispatcher) Authenticate(body []byte, signature string) error {
	if d.opts.AppSecret == "" {
		return nil
	}
	return verifySignature(body, signature, d.opts.AppSecret)
}

// Dispatch records a delivery and processes its events. The delivery is
// logged before it is parsed, so malformed bodies are kept too. Failures of
// single events are logged and do not fail the delivery; an error is only
// returned for bodies that cannot be parsed.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (*Result, error) {
	// Side effects already started must not be cut short by the sender hanging up
	ctx = context.WithoutCancel(ctx)

	var payload models.WebhookPayload
	parseErr := json.Unmarshal(body, &payload)

	result := &Result{
		DeliveryID: uuid.NewString(),
		Object:     payload.Object,
		Entries:    len(payload.Entry),
	}

	logger := log.With().Str("delivery_id", result.DeliveryID).Logger()

	d.recordDelivery(ctx, result, payload, body)

	if parseErr != nil {
		logger.Error().Err(parseErr).Int("size", len(body)).Msg("Failed to parse webhook payload")
		return result, fmt.Errorf("%w: %v", ErrMalformedPayload, parseErr)
	}

	if payload.Object != models.WebhookObjectPage {
		logger.Debug().Str("object", payload.Object).Msg("Ignoring non-page webhook delivery")
		return result, nil
	}

	for _, entry := range payload.Entry {
		d.dispatchEntry(ctx, result, entry)
	}

	logger.Info().
		Int("entries", result.Entries).
		Int("events", result.Events).
		Int("handled", result.Handled).
		Int("skipped", result.Skipped).
		Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).
		Msg("Webhook delivery processed")

	return result, nil
}

// recordDelivery writes the webhook_received entry for a delivery
func (d *Dispatcher) recordDelivery(ctx context.Context, result *Result, payload models.WebhookPayload, body []byte) {
	pageID := unknownPageID
	switch {
	case len(payload.Entry) > 0 && payload.Entry[0].ID != "":
		pageID = payload.Entry[0].ID
	case payload.Object != "":
		pageID = payload.Object
	}

	content := fmt.Sprintf("object=%s entries=%d", payload.Object, len(payload.Entry))
	entry := models.NewActionLog(pageID, "", "", content,
		models.NewWebhookReceivedMetadata(result.DeliveryID, payload.Object, len(payload.Entry), body))

	if err := d.logs.Create(ctx, entry); err != nil {
		log.Error().
			Err(err).
			Str("delivery_id", result.DeliveryID).
			Str(constants.LogFieldPageID, pageID).
			Msg("Failed to record webhook delivery")
	}
}

// dispatchEntry processes the events of one page
func (d *Dispatcher) dispatchEntry(ctx context.Context, result *Result, entry models.WebhookEntry) {
	events := make([]moderation.Event, 0, len(entry.Messaging)+len(entry.Changes))
	for _, m := range entry.Messaging {
		events = append(events, moderation.FromMessaging(entry.ID, m))
	}
	for _, change := range entry.Changes {
		if change.Field != models.FeedField {
			continue
		}
		events = append(events, moderation.FromFeedChange(entry.ID, change))
	}
	result.Events += len(events)

	if len(events) == 0 || entry.ID == "" {
		result.Skipped += len(events)
		return
	}

	page, err := d.pages.GetModeratedPage(ctx, entry.ID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			result.Skipped += len(events)
			log.Debug().Str(constants.LogFieldPageID, entry.ID).Msg("Skipping events of unmoderated page")
			return
		}
		result.Failed += len(events)
		log.Error().Err(err).Str(constants.LogFieldPageID, entry.ID).Msg("Failed to resolve page")
		return
	}

	for _, ev := range events {
		if d.isDuplicate(ctx, ev) {
			result.Duplicates++
			continue
		}

		if err := d.handle(ctx, page, ev); err != nil {
			result.Failed++
			log.Error().
				Err(err).
				Str(constants.LogFieldPageID, page.PageID).
				Str(constants.LogFieldEventKind, string(ev.Kind)).
				Str("user_id", ev.UserID).
				Msg("Failed to handle webhook event")
			continue
		}
		result.Handled++
	}
}

// handle runs one event, converting a panic into an error
func (d *Dispatcher) handle(ctx context.Context, page *models.Page, ev moderation.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogPanic(r, debug.Stack(), map[string]string{
				constants.LogFieldPageID:    page.PageID,
				constants.LogFieldEventKind: string(ev.Kind),
			})
			err = fmt.Errorf("panic while handling %s event: %v", ev.Kind, r)
		}
	}()

	_, err = d.handler.Handle(ctx, page, ev)
	return err
}

// isDuplicate reports whether the event was already seen within the dedupe
// window. Store failures let the event through.
func (d *Dispatcher) isDuplicate(ctx context.Context, ev moderation.Event) bool {
	if d.opts.Dedupe == nil {
		return false
	}
	key := ev.Key()
	if key == "" {
		return false
	}

	seen, err := d.opts.Dedupe.Seen(ctx, ev.PageID+":"+key, d.opts.DedupeWindow)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dedupe store unavailable")
		return false
	}
	if seen {
		log.Debug().Str("key", key).Msg("Skipping redelivered event")
	}
	return seen
}
