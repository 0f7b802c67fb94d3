package tests

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/signalix/otplogin/internal/app"
	"github.com/signalix/otplogin/internal/config"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-at-least-32-characters-long"

// devConfig returns a dev-mode configuration using the given pending store.
func devConfig(store string) *config.Config {
	return &config.Config{
		Port:         "0",
		JWTSecret:    testJWTSecret,
		DevMode:      true,
		PendingStore: store,
		PendingTTL:   time.Hour,
		CookieSecret: "test-cookie-secret",
		CookieSecure: false,
		LogLevel:     "error",
	}
}

// testServer is a running app plus a browser-like client that keeps cookies and does not follow redirects.
type testServer struct {
	Server *httptest.Server
	Client *http.Client
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := app.New(ctx, cfg)
	require.NoError(t, err, "app must start")
	t.Cleanup(func() { _ = a.Close() })

	server := httptest.NewServer(a.Handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testServer{Server: server, Client: client}
}

func (s *testServer) BaseURL() string { return s.Server.URL }

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

// TruncatePendingLogins empties the pending_logins table for a clean test state.
func TruncatePendingLogins(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "TRUNCATE TABLE pending_logins")
	if err != nil {
		return fmt.Errorf("truncate pending_logins: %w", err)
	}
	return nil
}
