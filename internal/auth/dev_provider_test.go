package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevProvider_FullFlow(t *testing.T) {
	jwtService := NewJWTService("dev-secret")
	p := NewDevProvider(jwtService)
	ctx := context.Background()

	require.NoError(t, p.RequestOTP(ctx, " Ada@Example.com "))

	session, err := p.VerifyOTP(ctx, "ada@example.com", DevOTP)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.NotEmpty(t, session.User.ID)
	assert.Equal(t, "bearer", session.TokenType)

	user, err := jwtService.VerifyAccessToken(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User, *user)

	// the request is consumed
	_, err = p.VerifyOTP(ctx, "ada@example.com", DevOTP)
	assert.Error(t, err)
}

func TestDevProvider_StableUserID(t *testing.T) {
	p := NewDevProvider(NewJWTService("dev-secret"))
	ctx := context.Background()

	require.NoError(t, p.RequestOTP(ctx, "ada@example.com"))
	s1, err := p.VerifyOTP(ctx, "ada@example.com", DevOTP)
	require.NoError(t, err)
	require.NoError(t, p.RequestOTP(ctx, "ada@example.com"))
	s2, err := p.VerifyOTP(ctx, "ada@example.com", DevOTP)
	require.NoError(t, err)

	assert.Equal(t, s1.User.ID, s2.User.ID)
}

func TestDevProvider_WrongCodeKeepsRequest(t *testing.T) {
	p := NewDevProvider(NewJWTService("dev-secret"))
	ctx := context.Background()
	require.NoError(t, p.RequestOTP(ctx, "ada@example.com"))

	_, err := p.VerifyOTP(ctx, "ada@example.com", "000000")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusForbidden, perr.HTTPStatus())
	assert.Equal(t, "Token has expired or is invalid", perr.Message)

	_, err = p.VerifyOTP(ctx, "ada@example.com", DevOTP)
	assert.NoError(t, err, "a wrong code must not consume the request")
}

func TestDevProvider_Expired(t *testing.T) {
	p := NewDevProvider(NewJWTService("dev-secret"))
	now := time.Now()
	p.now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, p.RequestOTP(ctx, "ada@example.com"))

	p.now = func() time.Time { return now.Add(otpExpiry) }
	_, err := p.VerifyOTP(ctx, "ada@example.com", DevOTP)
	assert.Error(t, err)
}

func TestDevProvider_UnknownEmail(t *testing.T) {
	p := NewDevProvider(NewJWTService("dev-secret"))
	_, err := p.VerifyOTP(context.Background(), "nobody@example.com", DevOTP)
	assert.Error(t, err)
}

func TestDevProvider_EmptyEmail(t *testing.T) {
	p := NewDevProvider(NewJWTService("dev-secret"))
	err := p.RequestOTP(context.Background(), "  ")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.Status)
}
