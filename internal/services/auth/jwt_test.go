package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signToken(t *testing.T, secret string, subject string, expiresAt time.Time, method jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseAccessToken(t *testing.T) {
	const secret = "test-secret"
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	validator := NewJWTValidator(secret)
	validator.now = func() time.Time { return now }

	t.Run("valid token", func(t *testing.T) {
		raw := signToken(t, secret, userID.String(), now.Add(time.Hour), jwt.SigningMethodHS256)
		claims, err := validator.ParseAccessToken(raw)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims.UserID != userID {
			t.Fatalf("user id mismatch: %s", claims.UserID)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		raw := signToken(t, secret, userID.String(), now.Add(-time.Minute), jwt.SigningMethodHS256)
		if _, err := validator.ParseAccessToken(raw); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		raw := signToken(t, "other-secret", userID.String(), now.Add(time.Hour), jwt.SigningMethodHS256)
		if _, err := validator.ParseAccessToken(raw); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		raw := signToken(t, secret, "12345", now.Add(time.Hour), jwt.SigningMethodHS256)
		if _, err := validator.ParseAccessToken(raw); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if _, err := validator.ParseAccessToken(""); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
