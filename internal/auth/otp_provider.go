package auth

import (
	"context"

	"github.com/signalix/otplogin/internal/model"
)

// OtpProvider defines the interface for the external auth provider's OTP operations
type OtpProvider interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, token string) (*model.Session, error)
}

// SessionEnder is implemented by providers that can revoke an access token.
type SessionEnder interface {
	Logout(ctx context.Context, accessToken string) error
}
