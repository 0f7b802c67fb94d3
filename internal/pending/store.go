// Package pending keeps the email of a login between the OTP request and its verification.
package pending

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/signalix/otplogin/internal/model"
)

// CookieName is the browser-side key of the pending login email.
const CookieName = "userEmail"

// ErrNotFound is returned by Load when there is no pending login or it has expired.
var ErrNotFound = errors.New("pending login not found")

// Store persists PendingLoginEmail for the browser making the request.
type Store interface {
	Save(w http.ResponseWriter, r *http.Request, email string) error
	Load(r *http.Request) (string, error)
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Backend is server-side storage for pending logins keyed by an opaque id.
type Backend interface {
	Put(ctx context.Context, p model.PendingLogin) error
	Get(ctx context.Context, id uuid.UUID) (model.PendingLogin, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Options configure the cookie carrying the pending login.
type Options struct {
	TTL    time.Duration
	Secure bool
}

func setCookie(w http.ResponseWriter, value string, opts Options, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(opts.TTL),
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func expireCookie(w http.ResponseWriter, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
