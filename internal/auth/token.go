// Package auth issues and verifies the bearer tokens the API hands out at
// login. Tokens are HS256 JWTs carrying the user id, email and role.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MikeMC777/inventory-api/internal/apperr"
)

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(userID int64, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", apperr.New(apperr.KindInternal, "sign token: %v", err)
	}
	return signed, nil
}

func (m *Manager) Parse(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.New(apperr.KindUnauthenticated, "unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid token")
	}
	if claims.UserID <= 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid token")
	}
	return &claims, nil
}
