package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return s
}

func TestFromToken(t *testing.T) {
	t.Run("EmptyTokenIsLocal", func(t *testing.T) {
		sess, err := FromToken("", testSecret)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !sess.IsLocal() {
			t.Errorf("Expected local session, got user %q", sess.UserID)
		}
		if sess.UserID != LocalUser {
			t.Errorf("Expected UserID %q, got %q", LocalUser, sess.UserID)
		}
	})

	t.Run("ValidToken", func(t *testing.T) {
		sess, err := FromToken(signedToken(t, "user-42"), testSecret)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if sess.UserID != "user-42" {
			t.Errorf("Expected UserID 'user-42', got %q", sess.UserID)
		}
		if sess.IsLocal() {
			t.Error("Expected authenticated session to not be local")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := FromToken(signedToken(t, "user-42"), "other-secret")
		if err == nil {
			t.Fatal("Expected an error for a token signed with another secret, got nil")
		}
	})

	t.Run("MissingSubject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := token.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		if _, err := FromToken(s, testSecret); err == nil {
			t.Fatal("Expected an error for a token without a subject, got nil")
		}
	})
}
