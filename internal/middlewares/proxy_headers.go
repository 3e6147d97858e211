package middlewares

import "github.com/gofiber/fiber/v2"

// proxyHeaders are client-forgeable unless set by a trusted reverse proxy.
var proxyHeaders = []string{
	"Forwarded",
	"X-Forwarded-For",
	"X-Forwarded-Proto",
	"X-Forwarded-Host",
	"X-Real-Ip",
}

// StripProxyHeaders removes proxy-set headers from incoming requests so
// nothing downstream can be tricked into trusting a spoofed client address.
// Deploying behind a trusted proxy disables it via trustProxyHeaders.
func StripProxyHeaders(trustProxyHeaders bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !trustProxyHeaders {
			for _, header := range proxyHeaders {
				ctx.Request().Header.Del(header)
			}
		}
		return ctx.Next()
	}
}
