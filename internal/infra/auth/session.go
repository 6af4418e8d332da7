package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"forma-web/internal/domain"
)

// ===== Demo session JWT primitives =====

type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

type DemoClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a short-lived HS256 token granting access to the demo API.
func (m *SessionManager) Mint() (string, error) {
	now := time.Now()
	claims := DemoClaims{
		Role: "demo",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   "demo",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) Verify(tok string) (*DemoClaims, error) {
	claims := &DemoClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrSessionInvalid
	}
	return claims, nil
}
