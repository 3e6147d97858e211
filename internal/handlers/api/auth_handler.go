package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/audit"
	"github.com/khanghh/ltcms/internal/auth"
	"github.com/khanghh/ltcms/internal/middlewares"
	"github.com/khanghh/ltcms/params"
)

// AuthService is the slice of the login orchestration the handlers need.
type AuthService interface {
	Login(ctx context.Context, clientIP string, username string, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, tokens []string, expiresAt time.Time)
	IssueCSRF(username string) (string, error)
}

type AuthHandler struct {
	authService AuthService
	cookies     auth.CookieSettings
}

// PostLogin authenticates credentials and establishes the session. The
// response carries the token for API clients; browser clients rely on the
// cookies set here.
func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.authService.Login(ctx.Context(), ctx.IP(), req.Username, req.Password)
	if err != nil {
		audit.RecordLogin(context.WithoutCancel(ctx.Context()), audit.LoginRecord{
			Username:  req.Username,
			IP:        ctx.IP(),
			UserAgent: ctx.Get(fiber.HeaderUserAgent),
			Success:   false,
			Reason:    err.Error(),
		})
		return err
	}

	ctx.Cookie(h.cookies.SessionCookie(result.Token))
	ctx.Cookie(h.cookies.CSRFCookie(result.CSRFToken))

	audit.RecordLogin(context.WithoutCancel(ctx.Context()), audit.LoginRecord{
		UserID:    result.User.ID,
		Username:  result.User.Username,
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
		Success:   true,
	})

	return ctx.Status(fiber.StatusOK).JSON(loginResponse{
		Token: result.Token,
		User: userInfoResponse{
			Username: result.User.Username,
			Role:     result.User.Role,
		},
	})
}

// PostLogout revokes every token presented with the request and clears the
// session cookies. Always responds 204 so a broken or replayed logout still
// lets the client discard its state.
func (h *AuthHandler) PostLogout(ctx *fiber.Ctx) error {
	var tokens []string
	if token, ok := auth.ExtractToken(ctx); ok {
		tokens = append(tokens, token)
	}
	if cookie := ctx.Cookies(params.AuthCookieName); cookie != "" {
		tokens = append(tokens, cookie)
	}
	claims := middlewares.ClaimsFromCtx(ctx)

	// Blacklist rows mirror the token's own expiry so cleanup can prune them
	// the moment the token dies.
	expiresAt := time.Now().Add(params.AuthTokenExpiration)
	if claims != nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	h.authService.Logout(ctx.Context(), tokens, expiresAt)

	if claims != nil {
		audit.RecordLogout(context.WithoutCancel(ctx.Context()), audit.LogoutRecord{
			Username:  claims.Username(),
			IP:        ctx.IP(),
			UserAgent: ctx.Get(fiber.HeaderUserAgent),
		})
	}

	ctx.Cookie(h.cookies.SessionCookieRemoval())
	ctx.Cookie(h.cookies.CSRFCookieRemoval())
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetMe returns the authenticated identity and refreshes the csrf cookie so
// long-lived sessions keep a token valid for writes.
func (h *AuthHandler) GetMe(ctx *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(ctx)
	if claims == nil {
		return auth.ErrMissingToken
	}
	csrfToken, err := h.authService.IssueCSRF(claims.Username())
	if err != nil {
		return err
	}
	ctx.Cookie(h.cookies.CSRFCookie(csrfToken))
	return ctx.JSON(userInfoResponse{
		Username: claims.Username(),
		Role:     claims.Role,
	})
}

func NewAuthHandler(authService AuthService, cookies auth.CookieSettings) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}
