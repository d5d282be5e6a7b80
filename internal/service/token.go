package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ignatzorin/mebel-backend/internal/models"
)

// RoleAdmin — роль администратора каталога.
const RoleAdmin = "admin"

// AccessToken — выданный токен и его срок.
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenManager отвечает за выпуск и проверку JWT.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue выпускает access токен для субъекта с ролью.
func (m *TokenManager) Issue(subject, role string) (*AccessToken, error) {
	now := time.Now()
	exp := now.Add(m.ttl)

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"jti":  models.NewID(),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: signed, ExpiresAt: exp}, nil
}

// ParseAccess извлекает субъекта и роль из access токена.
func (m *TokenManager) ParseAccess(token string) (string, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", err
	}
	if !parsed.Valid {
		return "", "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	role, _ := claims["role"].(string)

	return sub, role, nil
}
