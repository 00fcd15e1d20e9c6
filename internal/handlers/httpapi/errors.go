package httpapi

import (
	"NestVault/internal/core/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// errorResponse is the uniform error envelope. Code is stable for
// clients; Message is human-readable and safe to display.
type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Signature string `json:"signature,omitempty"`
}

func writeError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidTransaction):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNoActiveBalance):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrExecutionFailed):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrSigningFailed),
		errors.Is(err, domain.ErrBroadcastFailed),
		errors.Is(err, domain.ErrDecodeFailure):
		status = fiber.StatusBadGateway
	default:
		status = fiber.StatusInternalServerError
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		// Internal details stay in the logs.
		msg = "internal error"
	}
	return c.Status(status).JSON(errorResponse{Code: domain.ErrorCode(err), Message: msg})
}

func writeValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
		Code:    "invalid_request",
		Message: err.Error(),
	})
}
