package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judychuepursuit/change-4-change-back/internal/modules/payments"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	Provider   payments.Provider
	WebhookSvc *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, p payments.Provider, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Provider: p, WebhookSvc: svc}
}

// POST /stripe-webhook
// The signature covers the exact raw bytes, so verification runs on the
// unparsed body before anything else. Once an event is authenticated the
// processor always gets a 200; persistence problems are ours, and a non-2xx
// would only trigger a redelivery storm.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: unreadable body")
		return
	}

	ev, err := h.Provider.VerifyAndParseWebhook(c.Request.Context(), c.Request.Header, body)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			h.Logger.Warn("webhook signature verification failed", "err", err)
			c.String(http.StatusBadRequest, "Webhook Error: invalid signature")
			return
		}
		// authenticated but not parseable into anything we act on
		h.Logger.Error("webhook parse failed after verification", "err", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	outcome := h.WebhookSvc.Handle(c.Request.Context(), h.Provider.Name(), ev, body)
	if !outcome.Processed {
		h.Logger.Warn("webhook acknowledged but not processed", "event_id", ev.EventID, "type", ev.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
