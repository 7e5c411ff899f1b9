package handlers

import (
	"encoding/json"

	"github.com/escrow-platform/backend/internal/http/dto"
	"github.com/escrow-platform/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
	log            *zap.Logger
}

func NewWebhookHandler(webhookService *services.WebhookService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, log: log}
}

func (h *WebhookHandler) ProcessWebhook(c *fiber.Ctx) error {
	var req dto.ProcessWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Provider == "" || req.EventID == "" || req.EventType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "provider, eventId and eventType are required"})
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid payload"})
	}

	result, err := h.webhookService.Process(c.Context(), services.WebhookInput{
		Provider:  req.Provider,
		EventID:   req.EventID,
		EventType: req.EventType,
		Payload:   payload,
		Signature: req.Signature,
	})
	if err != nil {
		h.log.Error("webhook processing failed", zap.String("event_id", req.EventID), zap.Error(err))
		return fail(c, err)
	}

	return c.JSON(dto.WebhookAckResponse{Processed: result.Processed, EventID: result.EventID})
}
