package pending

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// carry copies cookies set on rec onto a new request, like a browser would.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		r.AddCookie(c)
	}
	return r
}

func TestCookieStore_SaveLoadClear(t *testing.T) {
	s := NewCookieStore("cookie-secret", Options{TTL: time.Hour, Secure: true})

	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), "ada@example.com"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.NotContains(t, cookies[0].Value, "ada@example.com")

	email, err := s.Load(carry(rec))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	clearRec := httptest.NewRecorder()
	require.NoError(t, s.Clear(clearRec, carry(rec)))
	cleared := clearRec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestCookieStore_Missing(t *testing.T) {
	s := NewCookieStore("cookie-secret", Options{TTL: time.Hour})
	_, err := s.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCookieStore_Tampered(t *testing.T) {
	s := NewCookieStore("cookie-secret", Options{TTL: time.Hour})
	other := NewCookieStore("other-secret", Options{TTL: time.Hour})

	rec := httptest.NewRecorder()
	require.NoError(t, other.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), "mallory@example.com"))

	_, err := s.Load(carry(rec))
	assert.ErrorIs(t, err, ErrNotFound)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "ada@example.com"})
	_, err = s.Load(r)
	assert.ErrorIs(t, err, ErrNotFound, "a plain email cookie must not be trusted")
}

func TestCookieStore_Expired(t *testing.T) {
	s := NewCookieStore("cookie-secret", Options{TTL: time.Minute})
	now := time.Now()
	s.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), "ada@example.com"))

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := s.Load(carry(rec))
	assert.ErrorIs(t, err, ErrNotFound)
}
