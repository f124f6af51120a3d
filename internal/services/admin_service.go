package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/cocapremium/internal/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrAdminDisabled      = errors.New("admin password hash is not configured")
)

// AdminServiceImpl реализует AdminService для единственного администратора из конфигурации.
type AdminServiceImpl struct {
	login           string
	passwordHash    string
	jwtSecret       string
	tokenExpiration time.Duration
}

// NewAdminService создаёт сервис входа администратора.
func NewAdminService(login, passwordHash, jwtSecret string, tokenExpiration time.Duration) *AdminServiceImpl {
	return &AdminServiceImpl{
		login:           login,
		passwordHash:    passwordHash,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
	}
}

// Login проверяет пароль и выдаёт токен с ролью администратора.
func (s *AdminServiceImpl) Login(ctx context.Context, login, password string) (string, error) {
	if s.passwordHash == "" {
		return "", ErrAdminDisabled
	}
	if login != s.login || !auth.CheckPassword(password, s.passwordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(login, auth.RoleAdmin, s.jwtSecret, s.tokenExpiration)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
