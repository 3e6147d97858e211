package middlewares

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/params"
)

// CSRFValidator checks a token against the authenticated username.
type CSRFValidator interface {
	ValidateCSRF(token string, username string) error
}

// CSRFGuard enforces the double-submit check on state-changing requests from
// authenticated sessions. The client must echo the csrf cookie in the
// x-csrf-token header; both values must match and the token must validate
// for the session's user. Anonymous requests pass through since they carry
// no session the attacker could ride.
func CSRFGuard(validator CSRFValidator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		switch ctx.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodTrace:
			return ctx.Next()
		}
		claims := ClaimsFromCtx(ctx)
		if claims == nil {
			return ctx.Next()
		}

		headerToken := ctx.Get(params.CSRFHeaderName)
		cookieToken := ctx.Cookies(params.CSRFCookieName)
		if headerToken == "" || cookieToken == "" {
			return csrfReject(ctx)
		}
		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) != 1 {
			return csrfReject(ctx)
		}
		if err := validator.ValidateCSRF(headerToken, claims.Username()); err != nil {
			slog.Debug("CSRF token rejected", "path", ctx.Path(), "error", err)
			return csrfReject(ctx)
		}
		return ctx.Next()
	}
}

func csrfReject(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "csrf validation failed"})
}
