// Package repositories описывает порты хранения пользователей.
package repositories

import (
	"context"
	"time"

	"gonotes/internal/auth/domain/entities"
)

// UserRepository определяет операции хранения пользователей.
// Email передается уже нормализованным. Отсутствие записи - entities.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	// FindByID может вернуть пользователя без PasswordHash и полей сброса, если ответ взят из кэша.
	FindByID(ctx context.Context, id string) (*entities.User, error)

	// FindByEmail всегда возвращает полную запись с учетными данными.
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	SetResetToken(ctx context.Context, id, token string, expires time.Time) error

	// FindByResetToken ищет пользователя с совпадающим токеном, срок которого не истек к now.
	FindByResetToken(ctx context.Context, token string, now time.Time) (*entities.User, error)

	// ConsumeResetToken атомарно находит пользователя по действующему токену,
	// записывает новый хэш пароля и очищает оба поля сброса.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entities.User, error)

	Delete(ctx context.Context, id string) error
}
