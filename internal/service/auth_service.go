package service

import (
	"context"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
)

// AuthService выдаёт токены администратору каталога.
type AuthService struct {
	login        string
	passwordHash []byte
	tokenManager *TokenManager
}

// NewAuthService создаёт сервис аутентификации. Пустой passwordHash отключает вход.
func NewAuthService(login, passwordHash string, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		login:        login,
		passwordHash: []byte(passwordHash),
		tokenManager: tokenManager,
	}
}

// Login проверяет учётные данные и выпускает access токен.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AccessToken, error) {
	if len(s.passwordHash) == 0 {
		return nil, apperror.ErrInvalidCredentials
	}

	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(s.login)) == 1
	// Хэш сверяется и при неверном логине.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !loginOK || passErr != nil {
		logger.Log.WithField("login", login).Warn("auth: неудачная попытка входа")
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Issue(s.login, RoleAdmin)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return token, nil
}
