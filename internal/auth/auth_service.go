package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/khanghh/ltcms/internal/common"
	"github.com/khanghh/ltcms/internal/secrets"
	"github.com/khanghh/ltcms/model"
	"github.com/khanghh/ltcms/params"
	"golang.org/x/crypto/bcrypt"
)

// fallbackDummyHash is only used if generating the dummy hash fails at
// startup. It is a valid bcrypt hash of no password anyone knows.
const fallbackDummyHash = "$2b$12$eImiTXuWVxfM37uY4JANjQPzMzXZjQDzqzQpMv0xoGrTplPPNaE3W"

// UserStore looks up accounts for credential verification. A missing user is
// (nil, nil), not an error, so the caller can run the dummy-hash comparison.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// LoginAttemptStore tracks consecutive failures per opaque hashed key.
// RecordFailure must increment and compute the lockout tier atomically.
type LoginAttemptStore interface {
	Get(ctx context.Context, key string) (*model.LoginAttempt, error)
	RecordFailure(ctx context.Context, key string, shortBlock time.Time, longBlock time.Time) error
	Clear(ctx context.Context, key string) error
}

// TokenBlacklist records revoked tokens until their natural expiry.
// Blacklist must be idempotent.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	CleanupExpired(ctx context.Context) error
}

type LoginResult struct {
	Token     string
	CSRFToken string
	User      *model.User
}

// AuthService orchestrates credential verification, lockout bookkeeping and
// token issuance around its collaborator stores.
type AuthService struct {
	tokenCodec *TokenCodec
	csrfCodec  *CSRFCodec
	loginSalt  []byte
	users      UserStore
	attempts   LoginAttemptStore
	blacklist  TokenBlacklist
	dummyHash  []byte
}

func NewAuthService(store *secrets.Store, users UserStore, attempts LoginAttemptStore, blacklist TokenBlacklist) *AuthService {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to generate dummy password hash", "error", err)
		dummyHash = []byte(fallbackDummyHash)
	}
	return &AuthService{
		tokenCodec: NewTokenCodec(store),
		csrfCodec:  NewCSRFCodec(store),
		loginSalt:  store.LoginAttemptSalt(),
		users:      users,
		attempts:   attempts,
		blacklist:  blacklist,
		dummyHash:  dummyHash,
	}
}

// AttemptKey derives the salted lockout key for one (client ip, username)
// pair. Keying on both balances brute-force resistance against targeted
// lockout DoS; the keyed hash keeps usernames out of storage.
func (s *AuthService) AttemptKey(clientIP string, username string) string {
	normalized := strings.ToLower(strings.TrimSpace(username))
	return common.CalculateHash(s.loginSalt, clientIP+":"+normalized)
}

// Login runs the full authentication state machine. Failure modes surface as
// *ValidationError, *LockoutError or ErrInvalidCredentials; anything else is
// a storage or crypto fault.
func (s *AuthService) Login(ctx context.Context, clientIP string, username string, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	key := s.AttemptKey(clientIP, username)
	record, err := s.attempts.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load login attempts: %w", err)
	}
	if record != nil && record.BlockedUntil != nil {
		// No sleep here: rejecting immediately avoids holding connections.
		if remaining := time.Until(*record.BlockedUntil); remaining > 0 {
			return nil, &LockoutError{Remaining: remaining}
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	// Always run a bcrypt comparison. The dummy hash keeps the unknown-user
	// path timing-indistinguishable from a wrong password.
	hashToVerify := s.dummyHash
	if user != nil {
		hashToVerify = []byte(user.Password)
	}
	verifyErr := bcrypt.CompareHashAndPassword(hashToVerify, []byte(password))
	passwordValid := user != nil && !user.Disabled && verifyErr == nil

	sleepJitter()

	if !passwordValid {
		now := time.Now()
		shortBlock := now.Add(params.LoginShortBlockDuration)
		longBlock := now.Add(params.LoginLongBlockDuration)
		// Monotonic write: let it finish even if the client is gone.
		if err := s.attempts.RecordFailure(context.WithoutCancel(ctx), key, shortBlock, longBlock); err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	if record != nil {
		if err := s.attempts.Clear(ctx, key); err != nil {
			slog.Warn("Failed to clear login attempts after successful login", "error", err)
		}
	}

	token, err := s.tokenCodec.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	csrfToken, err := s.csrfCodec.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue csrf token: %w", err)
	}

	s.maybeCleanupBlacklist()

	return &LoginResult{Token: token, CSRFToken: csrfToken, User: user}, nil
}

// Authenticate verifies a raw token and checks it against the revocation
// store. Used by the request gates on every authenticated request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokenCodec.Verify(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check token blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout blacklists every distinct token until expiresAt. Insert failures are
// logged but never propagated: the user must always be able to clear
// client-side state.
func (s *AuthService) Logout(ctx context.Context, tokens []string, expiresAt time.Time) {
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if err := s.blacklist.Blacklist(context.WithoutCancel(ctx), token, expiresAt); err != nil {
			slog.Error("Failed to blacklist token on logout", "error", err)
		}
	}
}

// IssueCSRF mints a fresh csrf token for an authenticated user, used to
// refresh the cookie on /auth/me.
func (s *AuthService) IssueCSRF(username string) (string, error) {
	return s.csrfCodec.Issue(username)
}

func (s *AuthService) ValidateCSRF(token string, username string) error {
	return s.csrfCodec.Validate(token, username)
}

// maybeCleanupBlacklist opportunistically prunes expired blacklist rows on
// ~1% of successful logins, replacing a dedicated scheduler.
func (s *AuthService) maybeCleanupBlacklist() {
	if rand.Float64() >= params.BlacklistCleanupProbability {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.blacklist.CleanupExpired(ctx); err != nil {
			slog.Error("Failed to cleanup expired blacklisted tokens", "error", err)
		}
	}()
}

// sleepJitter adds a bounded random delay after credential comparison to
// flatten any residual timing signal.
func sleepJitter() {
	jitter := params.LoginJitterMinMillis + rand.Intn(params.LoginJitterMaxMillis-params.LoginJitterMinMillis)
	time.Sleep(time.Duration(jitter) * time.Millisecond)
}
