package api

import (
	"errors"
	"log/slog"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// writeError maps an error from a port to an HTTP response.
func writeError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := "internal_error"

	switch {
	case errors.Is(err, domain.ErrValidation):
		code, kind = fiber.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		code, kind = fiber.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrPersistence):
		code, kind = fiber.StatusServiceUnavailable, "persistence_error"
	case errors.Is(err, auth.ErrRejected):
		code, kind = fiber.StatusBadRequest, "bad_request"
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   kind,
		Message: err.Error(),
	})
}

// appliedDespite splits a mutation result: a persistence error after the
// change was applied is reported alongside the result, anything else fails.
func appliedDespite(applied bool, err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if applied && errors.Is(err, domain.ErrPersistence) {
		return err.Error(), nil
	}
	return "", err
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
