package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/signalix/otplogin/internal/auth"
	"github.com/signalix/otplogin/internal/model"
)

// SessionCookieName holds the provider access token after a successful login.
const SessionCookieName = "sb-access-token"

// LoginPath is where requests without a valid session are sent.
const LoginPath = "/login"

type contextKey string

const userKey contextKey = "user"

// RequireSession verifies the session cookie and attaches the user to the context.
// Requests without a valid session are redirected to the login page.
func RequireSession(verifier auth.TokenVerifier, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			user, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				slog.InfoContext(r.Context(), "rejected session", "error", err)
				ClearSessionCookie(w, secure)
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the user attached to the request context (set by RequireSession)
func GetUser(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// SessionToken returns the access token from the session cookie, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetSessionCookie stores the session's access token until it expires.
func SetSessionCookie(w http.ResponseWriter, session *model.Session, secure bool) {
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !session.ExpiresAt.IsZero() {
		c.Expires = session.ExpiresAt
		c.MaxAge = int(time.Until(session.ExpiresAt).Seconds())
		if c.MaxAge <= 0 {
			c.MaxAge = -1
		}
	}
	http.SetCookie(w, c)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
