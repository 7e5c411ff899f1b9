package handlers

import (
	"strconv"

	"github.com/escrow-platform/backend/internal/http/dto"
	"github.com/escrow-platform/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	log            *zap.Logger
}

func NewPaymentHandler(paymentService *services.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, log: log}
}

func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.paymentService.ListAll(c.Context())
	if err != nil {
		h.log.Error("list payments failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: payments})
}

func (h *PaymentHandler) ListByDeal(c *fiber.Ctx) error {
	dealID, err := strconv.ParseInt(c.Params("dealId"), 10, 64)
	if err != nil || dealID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deal id"})
	}

	payments, err := h.paymentService.ListByDeal(c.Context(), dealID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: payments})
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	dealID, err := strconv.ParseInt(c.Params("dealId"), 10, 64)
	if err != nil || dealID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deal id"})
	}

	payment, providerStatus, err := h.paymentService.Status(c.Context(), dealID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PaymentStatusResponse{
		Payment:        payment,
		ProviderStatus: providerStatus.Status,
	}})
}
