// Package api описывает входные порты сервиса аутентификации.
package api

import (
	"context"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
)

// AuthUseCase определяет операции аутентификации и управления учетной записью.
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (*entities.User, error)

	Login(ctx context.Context, email, password string) (*services.Session, error)

	// VerifyToken разрешает токен сессии в пользователя или возвращает ErrUnauthorized.
	VerifyToken(ctx context.Context, token string) (*entities.User, error)

	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	RequestPasswordReset(ctx context.Context, email string) error

	ValidateResetToken(ctx context.Context, token string) error

	ResetPassword(ctx context.Context, token, newPassword string) error

	DeleteAccount(ctx context.Context, userID string) error
}
