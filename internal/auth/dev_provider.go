package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/signalix/otplogin/internal/model"
)

const (
	// DevOTP is the only code DevProvider accepts.
	DevOTP    = "123456"
	otpExpiry = 5 * time.Minute
)

var errDevTokenInvalid = &ProviderError{
	Status:  http.StatusForbidden,
	Code:    "otp_expired",
	Message: "Token has expired or is invalid",
}

// DevProvider implements OtpProvider in-process for OTP_DEV_MODE.
// No email is sent; every requested email can sign in with DevOTP until it expires.
type DevProvider struct {
	mu        sync.Mutex
	requested map[string]time.Time
	jwt       *JWTService
	now       func() time.Time
}

// NewDevProvider creates a dev provider issuing access tokens signed by jwtService
func NewDevProvider(jwtService *JWTService) *DevProvider {
	return &DevProvider{
		requested: make(map[string]time.Time),
		jwt:       jwtService,
		now:       time.Now,
	}
}

// RequestOTP records that email asked for a code
func (p *DevProvider) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &ProviderError{Status: http.StatusBadRequest, Code: "validation_failed", Message: "Email address is required"}
	}

	p.mu.Lock()
	p.requested[email] = p.now().Add(otpExpiry)
	p.mu.Unlock()

	slog.InfoContext(ctx, "dev mode: otp issued", "email", MaskEmail(email), "otp", DevOTP)
	return nil
}

// VerifyOTP accepts DevOTP for an email with an unexpired request and consumes it
func (p *DevProvider) VerifyOTP(_ context.Context, email, token string) (*model.Session, error) {
	email = normalizeEmail(email)

	p.mu.Lock()
	expiresAt, ok := p.requested[email]
	if !ok || !p.now().Before(expiresAt) || token != DevOTP {
		if ok && !p.now().Before(expiresAt) {
			delete(p.requested, email)
		}
		p.mu.Unlock()
		return nil, errDevTokenInvalid
	}
	delete(p.requested, email)
	p.mu.Unlock()

	user := model.User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email: email,
	}
	accessToken, expiresAt, err := p.jwt.SignAccessToken(user, uuid.NewString(), accessTokenExpiry)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(accessTokenExpiry.Seconds()),
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// Logout is a no-op; dev tokens simply expire.
func (p *DevProvider) Logout(context.Context, string) error {
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
