package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/khanghh/ltcms/internal/secrets"
	"github.com/khanghh/ltcms/params"
)

// Claims is the verified identity payload of a session token. It is
// reconstructed from the token on every request and never persisted.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Username() string {
	return c.Subject
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(store *secrets.Store) *TokenCodec {
	return &TokenCodec{secret: store.JWTSecret()}
}

// Issue creates a signed token for the user with the standard 24h lifetime.
func (c *TokenCodec) Issue(username string, role string) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(params.AuthTokenExpiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry (with clock-skew leeway) and returns the
// claims. Every failure collapses into ErrInvalidToken so the response can
// not be used as an oracle; the underlying reason is logged at debug level.
func (c *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithLeeway(params.AuthTokenLeeway), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		slog.Debug("Session token verification failed", "error", err)
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ExtractToken pulls the session token from the Authorization header first,
// falling back to the session cookie.
func ExtractToken(ctx *fiber.Ctx) (string, bool) {
	if token, ok := parseBearerToken(ctx.Get(fiber.HeaderAuthorization)); ok {
		return token, true
	}
	if cookie := ctx.Cookies(params.AuthCookieName); cookie != "" {
		return cookie, true
	}
	return "", false
}

func parseBearerToken(value string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
