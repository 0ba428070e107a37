package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// LocalUser is the sentinel identity for an unauthenticated session.
// Repositories treat it as "this device only".
const LocalUser = "local"

// Session identifies the caller for every repository operation. It is
// passed explicitly rather than held in package state so the offline
// check and the API-key locality are both testable.
type Session struct {
	UserID string
	Token  string
}

// Local returns the unauthenticated single-device session.
func Local() Session {
	return Session{UserID: LocalUser}
}

// IsLocal reports whether this session has no authenticated identity.
func (s Session) IsLocal() bool {
	return s.UserID == "" || s.UserID == LocalUser
}

// FromToken verifies an HS256 access token and builds a session from
// its subject claim. An empty token yields the local session; a token
// that fails verification is an error, never silently local.
func FromToken(token, secret string) (Session, error) {
	if token == "" {
		return Local(), nil
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return Session{}, fmt.Errorf("access token has no subject claim")
	}

	return Session{UserID: sub, Token: token}, nil
}
