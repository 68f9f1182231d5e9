// Package auth carries the design service API key: the request header and a
// local expiry check for keys issued as JWTs.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "Roofline/internal/errors"
)

const Scheme = "JWT"

var ErrExpired = errors.New("api key expired")

// Header renders the Authorization header value for token.
func Header(token string) string {
	return Scheme + " " + token
}

// FromHeader extracts the token from an Authorization header value.
func FromHeader(h string) (string, bool) {
	token, ok := strings.CutPrefix(h, Scheme+" ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// CheckExpiry rejects a JWT whose exp claim is before now. The signature is
// not verified; opaque keys are accepted as is.
func CheckExpiry(token string, now time.Time) error {
	if token == "" {
		return apperrors.ConfigRequired("PARAGON_API_KEY")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(now) {
		return apperrors.Wrap(ErrExpired, apperrors.CategoryConfig, "PARAGON_API_KEY").
			WithContext("expired_at", exp.Time.Format(time.RFC3339))
	}
	return nil
}

// Middleware requires a non-empty JWT Authorization header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromHeader(r.Header.Get("Authorization")); !ok {
			http.Error(w, "missing JWT authorization", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
