package auth

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidToken covers every structural, signature and expiry failure.
	// Callers must not learn which check failed; details go to the log only.
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrMissingToken       = errors.New("missing authentication token")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrCSRFMalformed       = errors.New("malformed CSRF token")
	ErrCSRFVersion         = errors.New("unsupported CSRF token version")
	ErrCSRFAccountMismatch = errors.New("CSRF token not issued for this account")
	ErrCSRFExpired         = errors.New("CSRF token expired")
	ErrCSRFSignature       = errors.New("CSRF signature mismatch")
)

// ValidationError reports malformed login input, rejected before any storage
// access.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// LockoutError is returned while a lockout window is active. Remaining is
// rounded up so a client never retries before the window actually ends.
type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) RemainingSeconds() int64 {
	secs := int64(math.Ceil(e.Remaining.Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %d seconds", e.RemainingSeconds())
}
