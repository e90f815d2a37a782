package handler

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/storyvouch/api/internal/auth"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/pkg/response"
)

// WebhookHandler receives video-host event notifications. The endpoint is
// unauthenticated; authenticity comes from the signature header when a
// webhook secret is configured.
type WebhookHandler struct {
	service       *service.WebhookService
	webhookSecret string
}

func NewWebhookHandler(svc *service.WebhookService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		service:       svc,
		webhookSecret: webhookSecret,
	}
}

// Receive handles POST /webhooks/mux. Valid events are always acknowledged
// with 200 regardless of processing outcome; a non-2xx would make the host
// redeliver an event the pipeline already absorbed.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	body := c.Body()

	if h.webhookSecret != "" {
		header := c.Get("Mux-Signature")
		if err := auth.VerifyWebhookSignature(header, body, h.webhookSecret, auth.DefaultSignatureTolerance); err != nil {
			log.Printf("[Webhook] Signature verification failed: %v", err)
			return response.Unauthorized(c, "Invalid webhook signature")
		}
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return response.ValidationError(c, "Invalid webhook body", nil)
	}

	h.service.HandleEvent(c.Context(), &event)

	return response.OK(c, model.WebhookAck{Received: true})
}
