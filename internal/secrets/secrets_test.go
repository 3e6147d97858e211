package secrets

import (
	"errors"
	"strings"
	"testing"

	"github.com/khanghh/ltcms/internal/config"
)

const (
	goodJWTSecret = "Fx9!vQz2LmN8pR4tYw7uKj3hGd5sAb1cEo6iZxWq0yT+"
	goodSecret    = "another_sufficiently_random_secret_0123456789"
)

func TestInitJWTSecretValidation(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"valid high entropy", goodJWTSecret, false},
		{"too short", "Ab1!Ab1!Ab1!Ab1!Ab1!", true}, // 20 chars
		{"two distinct chars", strings.Repeat("ab", 25), true},
		{"placeholder literal", "CHANGE_ME_OR_APP_WILL_FAIL", true},
		{"placeholder case insensitive", "change_me_or_app_will_fail", true},
		{"missing char classes", strings.Repeat("abcdefghijklmnop", 3), true},
		{"empty", "", true},
		{"whitespace only", "   \t", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			err := store.Init(SecretJWT, tt.secret)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init(%q) error = %v, wantErr %v", tt.secret, err, tt.wantErr)
			}
		})
	}
}

func TestInitCSRFSecretValidation(t *testing.T) {
	store := NewStore()
	// csrf secret has no char-class requirement, 32 chars suffice
	if err := store.Init(SecretCSRF, "abcdefghijklmnopqrstuvwxyz012345"); err != nil {
		t.Fatalf("Init csrf secret: %v", err)
	}
	store = NewStore()
	if err := store.Init(SecretCSRF, "tooshort"); err == nil {
		t.Fatal("expected short csrf secret to be rejected")
	}
	store = NewStore()
	if err := store.Init(SecretCSRF, strings.Repeat("abcd", 10)); err == nil {
		t.Fatal("expected low-diversity csrf secret to be rejected")
	}
}

func TestDoubleInitFailsDistinctly(t *testing.T) {
	store := NewStore()
	if err := store.Init(SecretJWT, goodJWTSecret); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	err := store.Init(SecretJWT, goodJWTSecret)
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init error = %v, want ErrAlreadyInitialized", err)
	}
	// a validation failure must NOT report ErrAlreadyInitialized
	store = NewStore()
	if err := store.Init(SecretJWT, "short"); errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("validation failure misreported as double init: %v", err)
	}
}

func TestGetBeforeInitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading uninitialized secret")
		}
	}()
	NewStore().JWTSecret()
}

func TestFromConfig(t *testing.T) {
	store, err := FromConfig(config.SecretsConfig{
		JWTSecret:        goodJWTSecret,
		CSRFSecret:       goodSecret,
		LoginAttemptSalt: goodSecret,
	})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if string(store.JWTSecret()) != goodJWTSecret {
		t.Fatal("jwt secret mismatch after init")
	}
	if string(store.LoginAttemptSalt()) != goodSecret {
		t.Fatal("login salt mismatch after init")
	}

	if _, err := FromConfig(config.SecretsConfig{}); err == nil {
		t.Fatal("expected missing secrets to fail startup")
	}
}
