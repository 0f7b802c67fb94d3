package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/signalix/otplogin/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnonKey = "anon-key"

type recorded struct {
	method string
	path   string
	apiKey string
	bearer string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.apiKey = r.Header.Get("apikey")
		rec.bearer = r.Header.Get("Authorization")
		if r.ContentLength > 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClient_RequestOTP(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, testAnonKey)

	require.NoError(t, c.RequestOTP(context.Background(), "ada@example.com"))
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/auth/v1/otp", rec.path)
	assert.Equal(t, testAnonKey, rec.apiKey)
	assert.Equal(t, "Bearer "+testAnonKey, rec.bearer)
	assert.Equal(t, "ada@example.com", rec.body["email"])
	assert.Equal(t, true, rec.body["create_user"])
}

func TestClient_RequestOTP_ProviderError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests,
		`{"code":429,"error_code":"over_email_send_rate_limit","msg":"Email rate limit exceeded"}`)
	c := NewClient(srv.URL, testAnonKey)

	err := c.RequestOTP(context.Background(), "ada@example.com")
	var perr *auth.ProviderError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Equal(t, "over_email_send_rate_limit", perr.Code)
	assert.Equal(t, "Email rate limit exceeded", perr.Message)
}

func TestClient_VerifyOTP(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{
		"access_token": "access",
		"token_type": "bearer",
		"expires_in": 3600,
		"expires_at": 1900000000,
		"refresh_token": "refresh",
		"user": {"id": "user-1", "email": "ada@example.com"}
	}`)
	c := NewClient(srv.URL, testAnonKey)

	session, err := c.VerifyOTP(context.Background(), "ada@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/verify", rec.path)
	assert.Equal(t, "email", rec.body["type"])
	assert.Equal(t, "ada@example.com", rec.body["email"])
	assert.Equal(t, "123456", rec.body["token"])

	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, int64(1900000000), session.ExpiresAt.Unix())
	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, "ada@example.com", session.User.Email)
}

func TestClient_VerifyOTP_LegacyErrorShape(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest,
		`{"error":"invalid_grant","error_description":"Token has expired or is invalid"}`)
	c := NewClient(srv.URL, testAnonKey)

	_, err := c.VerifyOTP(context.Background(), "ada@example.com", "000000")
	var perr *auth.ProviderError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, "invalid_grant", perr.Code)
	assert.Equal(t, "Token has expired or is invalid", perr.Message)
}

func TestClient_ErrorWithoutMessage(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusForbidden, `{}`)
	c := NewClient(srv.URL, testAnonKey)

	err := c.RequestOTP(context.Background(), "ada@example.com")
	var perr *auth.ProviderError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, http.StatusText(http.StatusForbidden), perr.Message)
}

func TestClient_GetUser(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"id":"user-1","email":"ada@example.com"}`)
	c := NewClient(srv.URL, testAnonKey)

	user, err := c.VerifyAccessToken(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/auth/v1/user", rec.path)
	assert.Equal(t, "Bearer user-token", rec.bearer)
	assert.Equal(t, "user-1", user.ID)
}

func TestClient_GetUser_Unauthorized(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, `{"msg":"invalid JWT"}`)
	c := NewClient(srv.URL, testAnonKey)

	_, err := c.GetUser(context.Background(), "expired")
	assert.Error(t, err)
}

func TestClient_Logout(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusNoContent, ``)
	c := NewClient(srv.URL, testAnonKey)

	require.NoError(t, c.Logout(context.Background(), "user-token"))
	assert.Equal(t, "/auth/v1/logout", rec.path)
	assert.Equal(t, "Bearer user-token", rec.bearer)
}

func TestClient_TransportError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	err := NewClient(url, testAnonKey).RequestOTP(context.Background(), "ada@example.com")
	require.Error(t, err)
	var perr *auth.ProviderError
	assert.False(t, errors.As(err, &perr))
}
