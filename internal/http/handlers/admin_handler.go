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

type AdminHandler struct {
	dealService *services.DealService
	userService *services.UserService
	log         *zap.Logger
}

func NewAdminHandler(dealService *services.DealService, userService *services.UserService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{dealService: dealService, userService: userService, log: log}
}

// adminFromQuery authorizes read endpoints where the actor id arrives as a
// query parameter. It returns a kinded error and leaves the response to the
// caller, so a failed check cannot be mistaken for success.
func (h *AdminHandler) adminFromQuery(c *fiber.Ctx) error {
	adminID, err := strconv.ParseInt(c.Query("adminId"), 10, 64)
	if err != nil || adminID <= 0 {
		return errs.Authorizationf("adminId is required")
	}
	_, err = h.userService.RequirePrivileged(c.Context(), adminID)
	return err
}

func (h *AdminHandler) GetDisputes(c *fiber.Ctx) error {
	if err := h.adminFromQuery(c); err != nil {
		return fail(c, err)
	}

	disputes, err := h.dealService.ListDisputes(c.Context())
	if err != nil {
		h.log.Error("list disputes failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: disputes})
}

func (h *AdminHandler) GetAllDeals(c *fiber.Ctx) error {
	if err := h.adminFromQuery(c); err != nil {
		return fail(c, err)
	}

	filter := repositories.DealFilter{Limit: 50}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	deals, err := h.dealService.ListDeals(c.Context(), filter)
	if err != nil {
		h.log.Error("admin list deals failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deals})
}

func (h *AdminHandler) ResolveDeal(c *fiber.Ctx) error {
	dealID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || dealID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deal id"})
	}

	var req dto.ResolveDealRequest
	if err := c.BodyParser(&req); err != nil || req.AdminID == 0 || req.Action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "adminId and action are required"})
	}

	deal, err := h.dealService.ResolveDeal(c.Context(), dealID, req.AdminID, req.Action, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deal})
}
