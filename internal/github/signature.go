// Package github implements the GitHub-facing side of the relay: webhook
// signature verification for incoming deliveries.
package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signaturePrefix is the scheme GitHub prepends to X-Hub-Signature-256 values.
const signaturePrefix = "sha256="

// VerifySignature reports whether signatureHeader is a valid
// X-Hub-Signature-256 value for body under the shared secret. The header must
// be "sha256=" followed by the lowercase hex HMAC-SHA256 digest of the raw
// request body. The digest comparison is constant time.
func VerifySignature(body []byte, signatureHeader, secret string) bool {
	if !strings.HasPrefix(signatureHeader, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	received := strings.TrimPrefix(signatureHeader, signaturePrefix)
	return hmac.Equal([]byte(expected), []byte(received))
}
