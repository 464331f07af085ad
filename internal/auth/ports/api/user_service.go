package api

import (
	"context"

	"gonotes/internal/auth/domain/services"
)

// UserUseCase определяет операции чтения данных пользователя.
type UserUseCase interface {
	GetUserProfile(ctx context.Context, userID string) (*services.Profile, error)
}
