package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleUser is the role given to every self-registered account.
const RoleUser = "user"

// User is a registered account. Username and Email are each unique.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
