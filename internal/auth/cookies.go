package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/params"
)

// CookieSettings controls the Secure attribute of both auth cookies. Secure
// is the default; disabling it is an explicit insecure-dev opt-out.
type CookieSettings struct {
	Secure bool
}

// SessionCookie wraps a signed session token. HttpOnly keeps it away from
// scripts; SameSite=Lax still allows top-level navigation.
func (s CookieSettings) SessionCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     params.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(params.AuthTokenExpiration.Seconds()),
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// CSRFCookie carries the csrf token. Deliberately not HttpOnly: the frontend
// must read it to echo it back in the x-csrf-token header.
func (s CookieSettings) CSRFCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     params.CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(params.CSRFTokenExpiration.Seconds()),
		Secure:   s.Secure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// SessionCookieRemoval expires the session cookie immediately.
func (s CookieSettings) SessionCookieRemoval() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     params.AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (s CookieSettings) CSRFCookieRemoval() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     params.CSRFCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   s.Secure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
