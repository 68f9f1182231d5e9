package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "Roofline/internal/errors"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "api",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestHeaderRoundTrip(t *testing.T) {
	assert.Equal(t, "JWT abc", Header("abc"))
	tok, ok := FromHeader(Header("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer abc", "JWT ", "JWT    "} {
		_, ok := FromHeader(h)
		assert.False(t, ok, h)
	}
}

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, CheckExpiry(signed(t, now.Add(time.Hour)), now))
	assert.NoError(t, CheckExpiry("opaque-key", now))

	err := CheckExpiry(signed(t, now.Add(-time.Hour)), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExpired))
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
	assert.False(t, apperrors.Sent(err))

	err = CheckExpiry("", now)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
}

func TestMiddleware(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/projects", nil)
	req.Header.Set("Authorization", Header("key"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
