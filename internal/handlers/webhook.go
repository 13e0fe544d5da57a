// Package handlers holds the HTTP handlers registered on the server.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobsyncai/jobsync/internal/whatsapp"
)

// maxWebhookBody caps how much of a webhook delivery is read.
const maxWebhookBody int64 = 10 * 1024 * 1024

// Flow handles classified inbound messages.
type Flow interface {
	HandleText(ctx context.Context, phone, text string) error
	HandleFile(ctx context.Context, phone string, content whatsapp.Content) error
	HandleUnsupported(ctx context.Context, phone string) error
}

// WebhookHandler serves the provider's webhook endpoints: the subscription
// handshake on GET and message deliveries on POST.
type WebhookHandler struct {
	verifyToken string
	flow        Flow
	logger      *slog.Logger
}

func NewWebhookHandler(log *slog.Logger, verifyToken string, flow Flow) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		flow:        flow,
		logger:      log.With(slog.String("handler", "webhook")),
	}
}

func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/webhook", h.Verify)
	e.POST("/webhook", h.Receive)
}

// Verify answers the provider's subscription handshake: echo the challenge
// iff the mode is "subscribe" and the verify token matches.
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "" || token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing hub.mode or hub.verify_token")
	}
	if mode != "subscribe" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected", slog.String("mode", mode))
		return echo.NewHTTPError(http.StatusForbidden, "verification failed")
	}

	h.logger.Info("webhook verified")
	return c.String(http.StatusOK, challenge)
}

// Receive ingests one webhook delivery. Deliveries are acknowledged with 200
// regardless of per-message handling outcomes; only an unreadable or
// unparsable body is an error.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("read webhook body", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "read body")
	}

	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("parse webhook body", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "parse body")
	}

	ctx := c.Request().Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				h.dispatch(ctx, msg)
			}
		}
	}
	return c.NoContent(http.StatusOK)
}

// dispatch classifies one message and routes it. Handling errors are logged,
// not surfaced: the provider retries failed deliveries and redelivery would
// double-process the rest of the batch.
func (h *WebhookHandler) dispatch(ctx context.Context, msg whatsapp.Message) {
	content := whatsapp.Classify(msg)
	log := h.logger.With(
		slog.String("from", msg.From),
		slog.String("message_id", msg.ID),
		slog.String("kind", string(content.Kind)),
	)

	var err error
	switch content.Kind {
	case whatsapp.ContentText:
		err = h.flow.HandleText(ctx, msg.From, content.Text)
	case whatsapp.ContentFile:
		err = h.flow.HandleFile(ctx, msg.From, content)
	default:
		err = h.flow.HandleUnsupported(ctx, msg.From)
	}
	if err != nil {
		log.Error("handle message", slog.Any("error", err))
		return
	}
	log.Info("message handled")
}
