package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity returned by the auth provider
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the result of a successful OTP verification
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	ExpiresAt    time.Time
	User         User
}

// PendingLogin holds the email of a login that requested an OTP but has not verified it yet
type PendingLogin struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the pending login is past its expiry at now.
func (p PendingLogin) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
