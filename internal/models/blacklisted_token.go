package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistedToken is an access token revoked before its natural expiry.
type BlacklistedToken struct {
	ID        uuid.UUID `json:"id"`
	TokenHash string    `json:"token_hash"` // SHA-256 of the raw token, see utils.HashToken
	ExpiresAt time.Time `json:"expires_at"` // exp claim of the revoked token
	CreatedAt time.Time `json:"created_at"`
}
