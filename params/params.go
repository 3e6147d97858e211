package params

import "time"

const (
	ServerBodyLimit    = 10485760 // 10 MiB, accommodates admin content payloads
	LoginBodyLimit     = 65536    // 64 KiB, login requests are tiny
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	AuthTokenExpiration = 24 * time.Hour   // jwt session token lifetime
	AuthTokenLeeway     = 60 * time.Second // clock skew tolerance when validating exp
	AuthCookieName      = "ltcms_session"

	CSRFTokenExpiration = 6 * time.Hour // csrf token lifetime, refreshed on /auth/me
	CSRFCookieName      = "ltcms_csrf"
	CSRFHeaderName      = "x-csrf-token"
	CSRFTokenVersion    = "v1"
	CSRFNonceMinLength  = 16

	LoginShortBlockFailCount = 3 // failures before the short lockout applies
	LoginLongBlockFailCount  = 5 // failures before the long lockout applies
	LoginShortBlockDuration  = 10 * time.Second
	LoginLongBlockDuration   = 60 * time.Second
	LoginJitterMinMillis     = 100 // lower bound of the post-verification delay
	LoginJitterMaxMillis     = 300 // upper bound of the post-verification delay

	UsernameMaxLength = 50
	PasswordMinLength = 12
	PasswordMaxLength = 128 // bounded to keep bcrypt cost predictable

	BlacklistCleanupProbability = 0.01 // chance per successful login to sweep expired rows

	LoginRateLimitMax     = 5 // requests per LoginRateLimitWindow per client IP
	LoginRateLimitWindow  = 5 * time.Second
	AdminRateLimitMax     = 3
	AdminRateLimitWindow  = 3 * time.Second
	PublicRateLimitMax    = 10
	PublicRateLimitWindow = 2 * time.Second

	JWTSecretMinLength   = 43 // ~256 bits when base64 encoded
	SecretMinLength      = 32 // csrf secret and login attempt salt
	SecretMinUniqueChars = 10
	SecretMinCharClasses = 3 // jwt secret only

	HealthCheckServerAddr = ":3001" // health check server address
)
