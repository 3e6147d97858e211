package middlewares

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/khanghh/ltcms/internal/auth"
	"github.com/khanghh/ltcms/params"
)

type fakeAuthenticator struct {
	tokens map[string]*auth.Claims
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, ok := f.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

type fakeCSRFValidator struct {
	valid map[string]string // token -> username
}

func (f *fakeCSRFValidator) ValidateCSRF(token string, username string) error {
	if f.valid[token] != username {
		return auth.ErrCSRFSignature
	}
	return nil
}

func newClaims(username string, role string) *auth.Claims {
	return &auth.Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: username},
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func TestStripProxyHeaders(t *testing.T) {
	app := newTestApp()
	app.Use(StripProxyHeaders(false))
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Get("X-Forwarded-For") + "|" + ctx.Get("X-Real-Ip") + "|" + ctx.Get("Forwarded"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "6.6.6.6")
	req.Header.Set("X-Real-Ip", "6.6.6.6")
	req.Header.Set("Forwarded", "for=6.6.6.6")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body := readBody(t, resp)
	if body != "||" {
		t.Errorf("proxy headers not stripped: %q", body)
	}
}

func TestStripProxyHeadersTrusted(t *testing.T) {
	app := newTestApp()
	app.Use(StripProxyHeaders(true))
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Get("X-Forwarded-For"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body := readBody(t, resp); body != "10.1.2.3" {
		t.Errorf("trusted proxy header removed: %q", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp()
	app.Use(SecurityHeaders(SecurityHeadersConfig{Debug: false}))
	app.Get("/api/auth/me", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })
	app.Get("/api/tutorials", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })
	app.Post("/api/tutorials", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	expect := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
		"X-XSS-Protection":       "0",
		"Cache-Control":          "no-store, no-cache, must-revalidate",
		"Pragma":                 "no-cache",
		"Expires":                "0",
	}
	for header, want := range expect {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := resp.Header.Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'self'") {
		t.Errorf("unexpected CSP %q", csp)
	}
	if strings.Contains(resp.Header.Get("Content-Security-Policy"), "ws:") {
		t.Error("production CSP must not allow websocket origins")
	}
	if resp.Header.Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set over plain http")
	}

	// Public read paths are briefly cacheable.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/tutorials", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("cacheable path Cache-Control = %q", got)
	}

	// Writes to the same path are not.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/tutorials", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store, no-cache, must-revalidate" {
		t.Errorf("POST Cache-Control = %q", got)
	}
}

func TestSecurityHeadersDebugCSP(t *testing.T) {
	app := newTestApp()
	app.Use(SecurityHeaders(SecurityHeadersConfig{Debug: true}))
	app.Get("/", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if csp := resp.Header.Get("Content-Security-Policy"); !strings.Contains(csp, "ws:") {
		t.Errorf("debug CSP must allow websocket origins, got %q", csp)
	}
}

func TestRequireAuth(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]*auth.Claims{
		"good-token": newClaims("alice", "admin"),
	}}
	app := newTestApp()
	app.Get("/me", RequireAuth(authn), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ClaimsFromCtx(ctx).Username() + "/" + TokenFromCtx(ctx))
	})

	// No token.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", resp.StatusCode)
	}

	// Bad token.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", resp.StatusCode)
	}

	// Bearer header.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body := readBody(t, resp); body != "alice/good-token" {
		t.Errorf("unexpected body %q", body)
	}

	// Session cookie fallback.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: params.AuthCookieName, Value: "good-token"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("cookie token: status %d, want 200", resp.StatusCode)
	}
}

func TestOptionalAuth(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]*auth.Claims{
		"good-token": newClaims("alice", "admin"),
	}}
	app := newTestApp()
	app.Post("/comments", OptionalAuth(authn), func(ctx *fiber.Ctx) error {
		if claims := ClaimsFromCtx(ctx); claims != nil {
			return ctx.SendString(claims.Username())
		}
		return ctx.SendString("anonymous")
	})

	// Anonymous requests pass through.
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/comments", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body := readBody(t, resp); body != "anonymous" {
		t.Errorf("no token body %q, want anonymous", body)
	}

	// A valid token attaches claims.
	req := httptest.NewRequest(http.MethodPost, "/comments", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body := readBody(t, resp); body != "alice" {
		t.Errorf("valid token body %q, want alice", body)
	}

	// A present-but-invalid token is rejected, never downgraded to anonymous.
	req = httptest.NewRequest(http.MethodPost, "/comments", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("invalid token: status %d, want 401", resp.StatusCode)
	}

	// Same for a stale session cookie.
	req = httptest.NewRequest(http.MethodPost, "/comments", nil)
	req.AddCookie(&http.Cookie{Name: params.AuthCookieName, Value: "stale-token"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("stale cookie: status %d, want 401", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]*auth.Claims{
		"admin-token": newClaims("alice", "admin"),
		"user-token":  newClaims("bob", "user"),
	}}
	app := newTestApp()
	app.Get("/admin", RequireAuth(authn), RequireRole("admin"), func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin: status %d, want 403", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin: status %d, want 200", resp.StatusCode)
	}
}

func TestCSRFGuard(t *testing.T) {
	authn := &fakeAuthenticator{tokens: map[string]*auth.Claims{
		"session-token": newClaims("alice", "admin"),
	}}
	validator := &fakeCSRFValidator{valid: map[string]string{"csrf-token": "alice"}}

	app := newTestApp()
	app.Use(OptionalAuth(authn))
	app.Use(CSRFGuard(validator))
	app.Get("/read", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })
	app.Trace("/read", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })
	app.Post("/write", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })

	send := func(method, path string, mutate func(*http.Request)) *http.Response {
		t.Helper()
		req := httptest.NewRequest(method, path, nil)
		if mutate != nil {
			mutate(req)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp
	}
	asSession := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer session-token")
	}

	// Safe methods bypass.
	if resp := send(http.MethodGet, "/read", asSession); resp.StatusCode != http.StatusOK {
		t.Errorf("GET: status %d, want 200", resp.StatusCode)
	}
	if resp := send(http.MethodTrace, "/read", asSession); resp.StatusCode != http.StatusOK {
		t.Errorf("TRACE: status %d, want 200", resp.StatusCode)
	}
	// Anonymous writes bypass.
	if resp := send(http.MethodPost, "/write", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("anonymous POST: status %d, want 200", resp.StatusCode)
	}
	// Authenticated write without csrf token.
	if resp := send(http.MethodPost, "/write", asSession); resp.StatusCode != http.StatusForbidden {
		t.Errorf("missing csrf: status %d, want 403", resp.StatusCode)
	}
	// Header present but cookie missing.
	if resp := send(http.MethodPost, "/write", func(req *http.Request) {
		asSession(req)
		req.Header.Set(params.CSRFHeaderName, "csrf-token")
	}); resp.StatusCode != http.StatusForbidden {
		t.Errorf("missing cookie: status %d, want 403", resp.StatusCode)
	}
	// Header and cookie mismatch.
	if resp := send(http.MethodPost, "/write", func(req *http.Request) {
		asSession(req)
		req.Header.Set(params.CSRFHeaderName, "csrf-token")
		req.AddCookie(&http.Cookie{Name: params.CSRFCookieName, Value: "other-token"})
	}); resp.StatusCode != http.StatusForbidden {
		t.Errorf("mismatch: status %d, want 403", resp.StatusCode)
	}
	// Matching but invalid token.
	if resp := send(http.MethodPost, "/write", func(req *http.Request) {
		asSession(req)
		req.Header.Set(params.CSRFHeaderName, "forged")
		req.AddCookie(&http.Cookie{Name: params.CSRFCookieName, Value: "forged"})
	}); resp.StatusCode != http.StatusForbidden {
		t.Errorf("forged token: status %d, want 403", resp.StatusCode)
	}
	// Valid double submit.
	if resp := send(http.MethodPost, "/write", func(req *http.Request) {
		asSession(req)
		req.Header.Set(params.CSRFHeaderName, "csrf-token")
		req.AddCookie(&http.Cookie{Name: params.CSRFCookieName, Value: "csrf-token"})
	}); resp.StatusCode != http.StatusOK {
		t.Errorf("valid csrf: status %d, want 200", resp.StatusCode)
	}
}

func TestErrorHandlerShapes(t *testing.T) {
	app := newTestApp()
	app.Get("/lockout", func(ctx *fiber.Ctx) error {
		return &auth.LockoutError{Remaining: 42 * time.Second}
	})
	app.Get("/creds", func(ctx *fiber.Ctx) error {
		return auth.ErrInvalidCredentials
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("db exploded")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/lockout", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("lockout: status %d, want 429", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "42 seconds") {
		t.Errorf("lockout body %q must carry the remaining seconds", body)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/creds", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("credentials: status %d, want 401", resp.StatusCode)
	}
	if body := readBody(t, resp); body != `{"error":"invalid credentials"}` {
		t.Errorf("credentials body %q", body)
	}

	// Internal details never leak.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("internal: status %d, want 500", resp.StatusCode)
	}
	if body := readBody(t, resp); strings.Contains(body, "exploded") {
		t.Errorf("internal body leaks error detail: %q", body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}
