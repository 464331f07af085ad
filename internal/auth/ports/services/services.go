// Package services описывает выходные порты сервиса аутентификации.
package services

import (
	"context"
	"time"
)

// PasswordService определяет операции с хэшами паролей.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)

	Verify(ctx context.Context, password, hash string) (bool, error)
}

// TokenService выпускает и проверяет токены сессии.
type TokenService interface {
	GenerateSessionToken(ctx context.Context, userID string) (string, time.Time, error)

	ValidateSessionToken(ctx context.Context, token string) (string, error)
}

// ResetTokenGenerator выпускает случайные токены сброса пароля.
type ResetTokenGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// Mailer отправляет письма.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// OwnedNotes - часть хранилища заметок, нужная учетной записи.
type OwnedNotes interface {
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)
}
