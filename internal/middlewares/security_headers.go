package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	cspProd = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'"
	// Dev builds need websocket connections for the frontend dev server.
	cspDev = "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self' ws: wss:; frame-ancestors 'none'; base-uri 'self'; form-action 'self'"

	hstsValue = "max-age=31536000; includeSubDomains"
)

// cacheablePrefixes are public read endpoints safe to cache briefly at the
// edge. Everything else carries no-store.
var cacheablePrefixes = []string{
	"/api/tutorials",
	"/api/content",
	"/api/public/",
}

type SecurityHeadersConfig struct {
	Debug bool
}

// SecurityHeaders sets the response defense headers on every request.
func SecurityHeaders(config SecurityHeadersConfig) fiber.Handler {
	csp := cspProd
	if config.Debug {
		csp = cspDev
	}
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()

		ctx.Set("Content-Security-Policy", csp)
		ctx.Set("X-Content-Type-Options", "nosniff")
		ctx.Set("X-Frame-Options", "DENY")
		ctx.Set("Referrer-Policy", "no-referrer")
		ctx.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// Explicitly off: the legacy XSS auditor introduces its own bugs.
		ctx.Set("X-XSS-Protection", "0")
		if ctx.Protocol() == "https" {
			ctx.Set("Strict-Transport-Security", hstsValue)
		}

		if ctx.Method() == fiber.MethodGet && isCacheablePath(ctx.Path()) {
			ctx.Set("Cache-Control", "public, max-age=300")
		} else {
			ctx.Set("Cache-Control", "no-store, no-cache, must-revalidate")
			ctx.Set("Pragma", "no-cache")
			ctx.Set("Expires", "0")
		}
		return err
	}
}

func isCacheablePath(path string) bool {
	for _, prefix := range cacheablePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
