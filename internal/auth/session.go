// Package auth implements the Google sign-in redirect flow and the JWT
// session cookie that carries the owner identity between requests.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "pinsync_session"
	// stateCookie carries the short-lived OAuth CSRF state.
	stateCookie = "pinsync_oauthstate"
)

var ErrInvalidSession = errors.New("invalid session")

// Identity is the authenticated user attached to a request.
type Identity struct {
	// UserID is the stable subject from the identity provider. Bookmarks
	// are scoped to this value.
	UserID string
	// Email is informational (display, allowlist checks at sign-in).
	Email string
}

// Sessions issues and verifies session tokens.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	timeNow func() time.Time
}

func NewSessions(secret []byte, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		secret:  secret,
		ttl:     ttl,
		secure:  secure,
		timeNow: time.Now,
	}
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a session token for the identity.
func (s *Sessions) Issue(id Identity) (string, time.Time, error) {
	now := s.timeNow()
	expires := now.Add(s.ttl)

	claims := &sessionClaims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, expires, nil
}

// Verify parses and validates a session token.
func (s *Sessions) Verify(tokenString string) (Identity, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.timeNow() }),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidSession
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// SetCookie attaches the session cookie to the response.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts and verifies the session from the request cookie.
func (s *Sessions) FromRequest(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return Identity{}, ErrInvalidSession
	}
	return s.Verify(cookie.Value)
}
