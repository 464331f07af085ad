// Package dto содержит объекты передачи данных HTTP-слоя.
package dto

import (
	"time"
)

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ChangePasswordRequest содержит текущий и новый пароль.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"required"`
}

// ForgotPasswordRequest содержит адрес для письма со ссылкой сброса.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ResetPasswordRequest содержит новый пароль.
type ResetPasswordRequest struct {
	Password string `json:"password" form:"password" validate:"required"`
}

// UserProfile содержит данные страницы профиля.
type UserProfile struct {
	Email     string
	CreatedAt time.Time
	NoteCount int64
}
