package common

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// CalculateHash returns the hex HMAC-SHA256 of the concatenated inputs.
// Used for login attempt keys so stored identifiers never reveal usernames.
func CalculateHash(key []byte, inputs ...interface{}) string {
	if len(inputs) == 0 {
		return ""
	}
	h := hmac.New(sha256.New, key)
	for _, val := range inputs {
		switch v := val.(type) {
		case []byte:
			h.Write(v)
		default:
			h.Write([]byte(fmt.Sprintf("%v", v)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SignHMAC signs message with HMAC-SHA256 and returns the raw url-safe base64
// signature.
func SignHMAC(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC recomputes the signature over message and compares it to the
// provided raw bytes in constant time.
func VerifyHMAC(secret []byte, message string, signature []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hmac.Equal(mac.Sum(nil), signature)
}

func GenerateSecret(n int) (string, error) {
	// each 3 bytes → 4 Base64 chars
	rawSize := (n*3 + 3) / 4
	raw := make([]byte, rawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)
	return secret[:n], nil
}
