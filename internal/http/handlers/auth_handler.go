package handlers

import (
	"github.com/escrow-platform/backend/internal/http/dto"
	"github.com/escrow-platform/backend/internal/middleware"
	"github.com/escrow-platform/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewAuthHandler(userService *services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	user, err := h.userService.Register(c.Context(), req.Email, req.Username)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "email is required"})
	}

	token, user, err := h.userService.Token(c.Context(), req.Email)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}
