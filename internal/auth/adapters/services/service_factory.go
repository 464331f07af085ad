// Package services содержит адаптеры паролей, токенов сессии и токенов сброса.
package services

import (
	"time"

	"gonotes/internal/auth/ports/services"
)

// FactoryConfig - параметры сервисов аутентификации.
type FactoryConfig struct {
	SecretKey       string
	SessionTTL      time.Duration
	BcryptCost      int
	ResetTokenBytes int
}

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService services.PasswordService
	tokenService    services.TokenService
	resetTokens     services.ResetTokenGenerator
}

// NewServiceFactory создает фабрику сервисов.
func NewServiceFactory(cfg FactoryConfig) *ServiceFactory {
	return &ServiceFactory{
		passwordService: NewBcrypt(cfg.BcryptCost),
		tokenService:    NewJWT(cfg.SecretKey, cfg.SessionTTL),
		resetTokens:     NewRandomResetTokens(cfg.ResetTokenBytes),
	}
}

// PasswordService возвращает сервис паролей.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис токенов сессии.
func (f *ServiceFactory) TokenService() services.TokenService {
	return f.tokenService
}

// ResetTokens возвращает генератор токенов сброса пароля.
func (f *ServiceFactory) ResetTokens() services.ResetTokenGenerator {
	return f.resetTokens
}
