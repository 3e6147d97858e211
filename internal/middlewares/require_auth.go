package middlewares

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/auth"
)

const (
	claimsContextKey = "authClaims"
	tokenContextKey  = "authToken"
)

// Authenticator verifies a raw session token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid, unrevoked session token. On
// success the claims and the raw token are stored on the request context.
func RequireAuth(authn Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token, ok := auth.ExtractToken(ctx)
		if !ok {
			return auth.ErrMissingToken
		}
		claims, err := authn.Authenticate(ctx.Context(), token)
		if err != nil {
			return err
		}
		ctx.Locals(claimsContextKey, claims)
		ctx.Locals(tokenContextKey, token)
		return ctx.Next()
	}
}

// OptionalAuth lets anonymous requests through untouched but still rejects
// a token that is present and invalid, so an expired or revoked session
// cannot downgrade itself to a guest.
func OptionalAuth(authn Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token, ok := auth.ExtractToken(ctx)
		if !ok {
			return ctx.Next()
		}
		claims, err := authn.Authenticate(ctx.Context(), token)
		if err != nil {
			return err
		}
		ctx.Locals(claimsContextKey, claims)
		ctx.Locals(tokenContextKey, token)
		return ctx.Next()
	}
}

// RequireRole gates a route on the authenticated role. Must run after
// RequireAuth.
func RequireRole(role string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		claims := ClaimsFromCtx(ctx)
		if claims == nil || claims.Role != role {
			return fiber.NewError(fiber.StatusForbidden, "forbidden")
		}
		return ctx.Next()
	}
}

func ClaimsFromCtx(ctx *fiber.Ctx) *auth.Claims {
	claims, _ := ctx.Locals(claimsContextKey).(*auth.Claims)
	return claims
}

func TokenFromCtx(ctx *fiber.Ctx) string {
	token, _ := ctx.Locals(tokenContextKey).(string)
	return token
}
