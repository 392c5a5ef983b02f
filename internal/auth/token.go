package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// TokenManager verifies JWT tokens issued by the identity service.
// This service never mints tokens of its own.
type TokenManager struct {
	secret []byte
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Claims describes the JWT payload this service understands.
type Claims struct {
	ActorID   string           `json:"sub"`
	ActorType domain.ActorType `json:"actor_type"`
	jwt.RegisteredClaims
}

// ParseToken validates the signature and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
