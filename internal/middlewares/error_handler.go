package middlewares

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/auth"
	"github.com/khanghh/ltcms/internal/content"
)

// ErrorHandler maps errors bubbling out of handlers onto JSON responses.
// Credential and token failures collapse into generic messages so responses
// never leak which check failed.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var (
		lockoutErr    *auth.LockoutError
		validationErr *auth.ValidationError
		fiberErr      *fiber.Error
	)
	switch {
	case errors.As(err, &lockoutErr):
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": fmt.Sprintf("too many failed login attempts, try again in %d seconds", lockoutErr.RemainingSeconds()),
		})
	case errors.As(err, &validationErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenRevoked):
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, content.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, content.ErrVersionConflict):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "version conflict"})
	case errors.As(err, &fiberErr):
		return ctx.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	default:
		slog.Error("Unhandled request error", "path", ctx.Path(), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
