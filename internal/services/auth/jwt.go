// Package auth validates access tokens issued by the external auth
// collaborator. Token issuance, refresh and login flows live there;
// this service only needs to know who is calling.
package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

type AccessClaims struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}

type JWTValidator struct {
	secret []byte
	now    func() time.Time
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
		now:    time.Now,
	}
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// ParseAccessToken accepts HS256 tokens whose subject is the user id.
// Anything else, including a missing expiry, is rejected as
// unauthorized without detail.
func (v *JWTValidator) ParseAccessToken(raw string) (AccessClaims, error) {
	if len(v.secret) == 0 {
		return AccessClaims{}, ErrUnauthorized
	}
	if strings.TrimSpace(raw) == "" {
		return AccessClaims{}, ErrUnauthorized
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(func() time.Time {
		return v.now()
	}))
	if err != nil || token == nil || !token.Valid {
		return AccessClaims{}, ErrUnauthorized
	}

	userID, parseErr := uuid.Parse(claims.Subject)
	if parseErr != nil || userID == uuid.Nil {
		return AccessClaims{}, ErrUnauthorized
	}
	if claims.ExpiresAt == nil {
		return AccessClaims{}, ErrUnauthorized
	}

	return AccessClaims{
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
