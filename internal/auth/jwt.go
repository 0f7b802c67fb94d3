package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/signalix/otplogin/internal/model"
)

const (
	accessTokenExpiry = time.Hour
	tokenAudience     = "authenticated"
)

// TokenVerifier resolves a provider access token to the signed-in user
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, accessToken string) (*model.User, error)
}

// JWTClaims mirrors the claims the provider puts into its access tokens
type JWTClaims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 access tokens with the provider's JWT secret
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// SignAccessToken creates an access token for user valid for ttl (1h when ttl <= 0)
func (s *JWTService) SignAccessToken(user model.User, sessionID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = accessTokenExpiry
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &JWTClaims{
		Email:     user.Email,
		Role:      tokenAudience,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// VerifyToken verifies and parses an access token
func (s *JWTService) VerifyToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(tokenAudience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return claims, nil
}

// VerifyAccessToken implements TokenVerifier without a provider round trip
func (s *JWTService) VerifyAccessToken(_ context.Context, accessToken string) (*model.User, error) {
	claims, err := s.VerifyToken(accessToken)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: claims.Subject, Email: claims.Email}, nil
}
