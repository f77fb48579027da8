package utils

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken returns a URL-safe SHA-256 digest of a raw token, used wherever
// a token is stored outside the process.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
