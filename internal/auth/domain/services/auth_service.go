package services

import (
	"errors"
	"fmt"
	"time"

	"gonotes/internal/auth/domain/entities"
)

// Ошибки домена аутентификации.
var (
	ErrUnauthorized               = errors.New("unauthorized")
	ErrInvalidCredentials         = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrEmailAlreadyExists         = fmt.Errorf("%w: user with this email already exists", entities.ErrValidation)
	ErrInvalidOrExpiredResetToken = errors.New("password reset token is invalid or has expired")
)

// Session - выданный после входа токен сессии.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Profile - данные для страницы профиля.
type Profile struct {
	User      *entities.User
	NoteCount int64
}
