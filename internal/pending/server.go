package pending

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/signalix/otplogin/internal/model"
)

// ServerStore keeps pending logins in a Backend; the browser only holds a random id.
type ServerStore struct {
	backend Backend
	opts    Options
	now     func() time.Time
}

var _ Store = (*ServerStore)(nil)

// NewServerStore creates a store on top of backend
func NewServerStore(backend Backend, opts Options) *ServerStore {
	return &ServerStore{
		backend: backend,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *ServerStore) Save(w http.ResponseWriter, r *http.Request, email string) error {
	// a newer request replaces any entry the browser still points at
	if old, ok := cookieID(r); ok {
		if err := s.backend.Delete(r.Context(), old); err != nil {
			slog.WarnContext(r.Context(), "failed to drop replaced pending login", "id", old, "error", err)
		}
	}

	now := s.now()
	p := model.PendingLogin{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}
	if err := s.backend.Put(r.Context(), p); err != nil {
		return fmt.Errorf("save pending login: %w", err)
	}

	setCookie(w, p.ID.String(), s.opts, now)
	return nil
}

func (s *ServerStore) Load(r *http.Request) (string, error) {
	id, ok := cookieID(r)
	if !ok {
		return "", ErrNotFound
	}

	p, err := s.backend.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load pending login: %w", err)
	}
	if p.Expired(s.now()) {
		return "", ErrNotFound
	}

	return p.Email, nil
}

func (s *ServerStore) Clear(w http.ResponseWriter, r *http.Request) error {
	if id, ok := cookieID(r); ok {
		if err := s.backend.Delete(r.Context(), id); err != nil {
			return fmt.Errorf("clear pending login: %w", err)
		}
	}
	expireCookie(w, s.opts)
	return nil
}

func cookieID(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
