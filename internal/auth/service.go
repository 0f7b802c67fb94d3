package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/signalix/otplogin/internal/model"
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrCodeRequired  = errors.New("otp is required")
	ErrEmailMissing  = errors.New("pending login email is missing")
)

// ProviderError is a failure reported by the auth provider. Message is safe to show to the user.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error: %d %s - %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error: %d - %s", e.Status, e.Message)
}

// HTTPStatus returns the provider's 4xx status, or 502 for anything else.
func (e *ProviderError) HTTPStatus() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}

// LoginService runs the two steps of the email OTP login against the provider
type LoginService struct {
	provider OtpProvider
	validate *validator.Validate
}

// NewLoginService creates a new login service
func NewLoginService(provider OtpProvider) *LoginService {
	return &LoginService{
		provider: provider,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RequestOTP asks the provider to email a code. An empty email never reaches the provider.
func (s *LoginService) RequestOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required"); err != nil {
		return ErrEmailRequired
	}

	if err := s.provider.RequestOTP(ctx, email); err != nil {
		slog.WarnContext(ctx, "otp request failed", "email", MaskEmail(email), "error", err)
		return fmt.Errorf("request otp: %w", err)
	}

	slog.InfoContext(ctx, "otp requested", "email", MaskEmail(email))
	return nil
}

// VerifyOTP checks code for the pending email. Missing input never reaches the provider.
func (s *LoginService) VerifyOTP(ctx context.Context, email, code string) (*model.Session, error) {
	code = strings.TrimSpace(code)
	if err := s.validate.Var(code, "required"); err != nil {
		return nil, ErrCodeRequired
	}
	if err := s.validate.Var(email, "required"); err != nil {
		return nil, ErrEmailMissing
	}

	session, err := s.provider.VerifyOTP(ctx, email, code)
	if err != nil {
		slog.WarnContext(ctx, "otp verification failed", "email", MaskEmail(email), "error", err)
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if session == nil || session.AccessToken == "" {
		return nil, fmt.Errorf("verify otp: provider returned no session")
	}

	slog.InfoContext(ctx, "otp verified", "email", MaskEmail(email), "user_id", session.User.ID)
	return session, nil
}

// Logout revokes the access token at the provider when it supports it.
func (s *LoginService) Logout(ctx context.Context, accessToken string) error {
	ender, ok := s.provider.(SessionEnder)
	if !ok || accessToken == "" {
		return nil
	}
	if err := ender.Logout(ctx, accessToken); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// MaskEmail masks the local part of an email for logging (e.g. ad*****@example.com)
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "****"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:2] + strings.Repeat("*", len(local)-2) + domain
}
