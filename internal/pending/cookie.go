package pending

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type pendingClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CookieStore carries the pending email in the browser as a signed, expiring JWT.
// Nothing is kept server-side.
type CookieStore struct {
	secret []byte
	opts   Options
	now    func() time.Time
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a cookie store signing with secret
func NewCookieStore(secret string, opts Options) *CookieStore {
	return &CookieStore{
		secret: []byte(secret),
		opts:   opts,
		now:    time.Now,
	}
}

func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, email string) error {
	now := s.now()
	claims := &pendingClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign pending login: %w", err)
	}

	setCookie(w, value, s.opts, now)
	return nil
}

func (s *CookieStore) Load(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNotFound
	}

	claims := &pendingClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Email == "" {
		return "", ErrNotFound
	}

	return claims.Email, nil
}

func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	expireCookie(w, s.opts)
	return nil
}
