// Package postgres содержит хранилище пользователей на PostgreSQL.
package postgres

import (
	"gonotes/internal/auth/ports/repositories"
)

// RepositoryFactory создает репозитории сервиса аутентификации поверх общего пула.
type RepositoryFactory struct {
	userRepo repositories.UserRepository
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool PgxPoolInterface) *RepositoryFactory {
	return &RepositoryFactory{
		userRepo: NewUserRepository(pool),
	}
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return f.userRepo
}
