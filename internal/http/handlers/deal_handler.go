package handlers

import (
	"strconv"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/http/dto"
	"github.com/escrow-platform/backend/internal/repositories"
	"github.com/escrow-platform/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DealHandler struct {
	dealService *services.DealService
	log         *zap.Logger
}

func NewDealHandler(dealService *services.DealService, log *zap.Logger) *DealHandler {
	return &DealHandler{dealService: dealService, log: log}
}

// dealIDParam parses the :id route parameter. The kinded error is mapped to
// a response by the caller, never written here.
func dealIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validationf("invalid deal id")
	}
	return id, nil
}

func (h *DealHandler) CreateDeal(c *fiber.Ctx) error {
	var req dto.CreateDealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "title is required"})
	}

	deal, err := h.dealService.CreateDeal(c.Context(), services.CreateDealInput{
		BuyerID:     req.BuyerID,
		SellerID:    req.SellerID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) GetDeal(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	deal, err := h.dealService.GetDeal(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) ListDeals(c *fiber.Ctx) error {
	filter := repositories.DealFilter{Limit: 20, Offset: 0}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("userId"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.UserID = &n
		}
	}

	deals, err := h.dealService.ListDeals(c.Context(), filter)
	if err != nil {
		h.log.Error("list deals failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deals})
}

func (h *DealHandler) FundDeal(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.ActorRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "userId is required"})
	}

	deal, err := h.dealService.FundDeal(c.Context(), id, req.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) ConfirmExecution(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.ActorRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "userId is required"})
	}

	deal, err := h.dealService.ConfirmExecution(c.Context(), id, req.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) AcceptByBuyer(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.ActorRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "userId is required"})
	}

	deal, err := h.dealService.AcceptByBuyer(c.Context(), id, req.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) RaiseDispute(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.ActorRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "userId is required"})
	}

	deal, err := h.dealService.RaiseDispute(c.Context(), id, req.UserID, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) CancelDeal(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.ActorRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "userId is required"})
	}

	deal, err := h.dealService.CancelDeal(c.Context(), id, req.UserID, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}

func (h *DealHandler) GetDealEvents(c *fiber.Ctx) error {
	id, err := dealIDParam(c)
	if err != nil {
		return fail(c, err)
	}

	events, err := h.dealService.GetDealEvents(c.Context(), id)
	if err != nil {
		h.log.Error("get deal events failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: events})
}
