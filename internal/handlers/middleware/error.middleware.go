package middleware

import (
	"errors"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

const MSG_INTERNAL = "Internal server error"

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch types.KindOf(err) {
	case types.KindUnauthorized:
		return fiber.StatusUnauthorized
	case types.KindForbidden:
		return fiber.StatusForbidden
	case types.KindNotFound:
		return fiber.StatusNotFound
	case types.KindValidation:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// RespondError writes {"error": message}. Internal errors answer fallback so
// store details never reach the caller.
func RespondError(c *fiber.Ctx, err error, fallback string) error {
	if fallback == "" {
		fallback = MSG_INTERNAL
	}
	status := StatusOf(err)
	if status == fiber.StatusInternalServerError {
		logger.New("middleware").TraceFromContext(c.UserContext()).Function("RespondError").
			Er("request failed", err, "method", c.Method(), "path", c.Path())
	}
	return c.Status(status).JSON(fiber.Map{"error": types.PublicMessage(err, fallback)})
}

// ErrorHandler is the fiber fallback for errors no handler answered,
// including body parser and routing errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	return RespondError(c, err, MSG_INTERNAL)
}
