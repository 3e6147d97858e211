package secrets

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/khanghh/ltcms/internal/config"
	"github.com/khanghh/ltcms/params"
)

// Secret names managed by the store. Each has its own validation policy.
const (
	SecretJWT       = "jwtSecret"
	SecretCSRF      = "csrfSecret"
	SecretLoginSalt = "loginAttemptSalt"
)

var (
	// ErrAlreadyInitialized is returned on a repeated Init for the same
	// secret. Distinct from validation failures so callers can tell a
	// programming error apart from bad configuration.
	ErrAlreadyInitialized = errors.New("secret already initialized")
)

// placeholderBlacklist lists known example values from docs and compose files
// that must never reach production.
var placeholderBlacklist = []string{
	"CHANGE_ME_OR_APP_WILL_FAIL",
	"your-super-secret-jwt-key-min-32-chars-change-me-in-production",
	"PLEASE-SET-THIS-VIA-DOCKER-COMPOSE-ENV",
}

type policy struct {
	minLength          int
	minUniqueChars     int
	minCharClasses     int
	rejectPlaceholders bool
}

func policyFor(name string) policy {
	if name == SecretJWT {
		return policy{
			minLength:          params.JWTSecretMinLength,
			minUniqueChars:     params.SecretMinUniqueChars,
			minCharClasses:     params.SecretMinCharClasses,
			rejectPlaceholders: true,
		}
	}
	return policy{
		minLength:      params.SecretMinLength,
		minUniqueChars: params.SecretMinUniqueChars,
	}
}

// Store holds the process-wide signing secrets. Secrets are written exactly
// once during startup and read-only afterwards, so concurrent reads need no
// synchronization once the constructor has returned.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Init validates and stores a secret under the given name. A second call for
// the same name fails with ErrAlreadyInitialized regardless of the value.
func (s *Store) Init(name string, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if err := validateSecret(name, trimmed, policyFor(name)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrAlreadyInitialized)
	}
	s.values[name] = []byte(trimmed)
	return nil
}

func (s *Store) get(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.values[name]
	if !ok {
		panic(fmt.Sprintf("secret %q not initialized", name))
	}
	return val
}

// JWTSecret returns the jwt signing secret. Panics before Init; calling it
// that early is a programming error, not a runtime condition.
func (s *Store) JWTSecret() []byte {
	return s.get(SecretJWT)
}

func (s *Store) CSRFSecret() []byte {
	return s.get(SecretCSRF)
}

func (s *Store) LoginAttemptSalt() []byte {
	return s.get(SecretLoginSalt)
}

// FromConfig builds a fully initialized store from configuration. Any
// validation failure is fatal to startup; there is no insecure fallback.
func FromConfig(cfg config.SecretsConfig) (*Store, error) {
	store := NewStore()
	if err := store.Init(SecretJWT, cfg.JWTSecret); err != nil {
		return nil, err
	}
	if err := store.Init(SecretCSRF, cfg.CSRFSecret); err != nil {
		return nil, err
	}
	if err := store.Init(SecretLoginSalt, cfg.LoginAttemptSalt); err != nil {
		return nil, err
	}
	return store, nil
}

func validateSecret(name string, secret string, p policy) error {
	if secret == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if p.rejectPlaceholders {
		for _, candidate := range placeholderBlacklist {
			if strings.EqualFold(secret, candidate) {
				return fmt.Errorf("%s uses a known placeholder value, generate a fresh random secret (e.g. `openssl rand -base64 48`)", name)
			}
		}
	}
	if len(secret) < p.minLength {
		return fmt.Errorf("%s must be at least %d characters long", name, p.minLength)
	}
	if uniqueChars(secret) < p.minUniqueChars {
		return fmt.Errorf("%s must contain at least %d unique characters", name, p.minUniqueChars)
	}
	if p.minCharClasses > 0 && charClasses(secret) < p.minCharClasses {
		return fmt.Errorf("%s must mix at least %d of: lowercase, uppercase, digits, symbols", name, p.minCharClasses)
	}
	return nil
}

func uniqueChars(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func charClasses(s string) int {
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			classes++
		}
	}
	return classes
}
