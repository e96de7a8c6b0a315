package jwtutil

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"bcflats_backend/internal/config"
	"bcflats_backend/internal/models"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	AccountID uint        `json:"account_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and validates API tokens.
type Manager struct {
	signingKey []byte
	expiry     time.Duration
}

func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{
		signingKey: []byte(cfg.SigningKey),
		expiry:     time.Duration(cfg.ExpirationHours) * time.Hour,
	}
}

// Generate issues a signed token for the account.
func (m *Manager) Generate(account *models.Account) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Subject:   fmt.Sprintf("%d", account.ID),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Validate parses and verifies a token, returning its claims.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
