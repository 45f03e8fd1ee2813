package service

import (
	"fmt"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================
// Tokens de sessão
// ============================================================
//
// Cada sessão nasce com um JWT HMAC cujo subject é o id da sessão.
// Todas as sub-rotas de sessão exigem o token: sem ele, qualquer um
// que adivinhasse um UUID poderia interferir na conversa de outro
// visitante.

// SessionClaims são as claims do token de sessão.
type SessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager assina e valida tokens de sessão.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Mint assina um token para a sessão.
func (m *TokenManager) Mint(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Type: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "ashley-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate verifica o token e devolve o id de sessão do subject.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid session token claims"}
	}
	return claims.Subject, nil
}
