package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrValidation - корень всех ошибок пользовательского ввода.
var ErrValidation = errors.New("validation error")

// Ошибки домена пользователя.
var (
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrEmptyEmail      = fmt.Errorf("%w: email is required", ErrValidation)
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyPassword   = fmt.Errorf("%w: password is required", ErrValidation)
	ErrPasswordTooLong = fmt.Errorf("%w: password must not exceed %d bytes", ErrValidation, MaxPasswordBytes)
	ErrUserNotFound    = errors.New("user not found")
)

// MaxPasswordBytes - предел bcrypt. Нижней границы длины нет, отклоняется только пустой пароль.
const MaxPasswordBytes = 72

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// User представляет основную сущность домена пользователя.
type User struct {
	ID           string
	Email        string
	PasswordHash string

	// ResetPasswordToken и ResetPasswordExpires заданы либо оба, либо ни одно.
	ResetPasswordToken   string
	ResetPasswordExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingReset сообщает, есть ли у пользователя действующий токен сброса пароля.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetPasswordToken != "" && u.ResetPasswordExpires != nil && now.Before(*u.ResetPasswordExpires)
}

// NormalizeEmail приводит email к каноническому виду для хранения и поиска.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет уже нормализованный email.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword проверяет новый пароль.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) > MaxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}
