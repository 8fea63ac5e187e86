package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"crmBackend/src/apperr"
	"crmBackend/src/config"
)

// TokenPair пара access/refresh токенов
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager выпускает и проверяет JWT-токены
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(cfg *config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

type userClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssuePair выпускает пару токенов для пользователя
func (m *TokenManager) IssuePair(userID int64) (TokenPair, error) {
	access, err := m.issue(userID, "access", m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.issue(userID, "refresh", m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) issue(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := userClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseAccess проверяет access-токен и возвращает идентификатор пользователя
func (m *TokenManager) ParseAccess(token string) (int64, error) {
	claims := &userClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, apperr.ErrUnauthorized
	}
	if claims.TokenType != "access" {
		return 0, apperr.ErrUnauthorized
	}
	return claims.UserID, nil
}
