package handlers

import (
	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/http/dto"
	"github.com/gofiber/fiber/v2"
)

// fail maps a service error to an HTTP response by its kind.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindValidation:
		status = fiber.StatusBadRequest
	case errs.KindNotFound:
		status = fiber.StatusNotFound
	case errs.KindAuthorization:
		status = fiber.StatusForbidden
	case errs.KindInvalidTransition:
		status = fiber.StatusConflict
	case errs.KindProvider:
		status = fiber.StatusBadGateway
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}
