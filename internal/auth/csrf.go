package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khanghh/ltcms/internal/common"
	"github.com/khanghh/ltcms/internal/secrets"
	"github.com/khanghh/ltcms/params"
)

// CSRFCodec issues and validates anti-forgery tokens of the form
// v1|base64url(username)|expiry|nonce|base64url(signature). Tokens are bound
// to one username and signed with HMAC-SHA256 under the csrf secret.
type CSRFCodec struct {
	secret []byte
}

func NewCSRFCodec(store *secrets.Store) *CSRFCodec {
	return &CSRFCodec{secret: store.CSRFSecret()}
}

// Issue creates a fresh token for username. The uuid nonce makes every
// issuance unique even within the same second.
func (c *CSRFCodec) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username required for CSRF token")
	}
	expiry := time.Now().Add(params.CSRFTokenExpiration).Unix()
	nonce := uuid.NewString()
	usernameB64 := base64.RawURLEncoding.EncodeToString([]byte(username))

	payload := fmt.Sprintf("%s|%s|%d|%s", params.CSRFTokenVersion, usernameB64, expiry, nonce)
	signature := common.SignHMAC(c.secret, payload)
	return payload + "|" + signature, nil
}

// Validate parses and verifies a token against the authenticated username.
// Exactly 5 pipe-separated fields are required; the signature comparison is
// constant time.
func (c *CSRFCodec) Validate(token string, expectedUsername string) error {
	parts := strings.Split(token, "|")
	if len(parts) != 5 {
		return ErrCSRFMalformed
	}
	version, usernameB64, expiryStr, nonce, signatureB64 := parts[0], parts[1], parts[2], parts[3], parts[4]

	if version != params.CSRFTokenVersion {
		return ErrCSRFVersion
	}

	usernameBytes, err := base64.RawURLEncoding.DecodeString(usernameB64)
	if err != nil {
		return ErrCSRFMalformed
	}
	if string(usernameBytes) != expectedUsername {
		return ErrCSRFAccountMismatch
	}

	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return ErrCSRFMalformed
	}
	if expiry < time.Now().Unix() {
		return ErrCSRFExpired
	}

	if len(nonce) < params.CSRFNonceMinLength {
		return ErrCSRFMalformed
	}

	signature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return ErrCSRFSignature
	}
	payload := strings.Join(parts[:4], "|")
	if !common.VerifyHMAC(c.secret, payload, signature) {
		return ErrCSRFSignature
	}
	return nil
}
