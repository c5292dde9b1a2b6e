package sales

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// ValidSignature checks the HMAC-SHA1 hex digest of the raw request body
// against the provided signature header. The comparison is constant-time and
// case-insensitive; the body must be hashed before any parsing touches it.
func ValidSignature(body []byte, secret, provided string) bool {
	if provided == "" {
		return false
	}
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	given := strings.ToLower(strings.TrimSpace(provided))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
