// Package cache содержит кэширующую обертку над хранилищем пользователей.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/ports/cache"
	"gonotes/internal/auth/ports/repositories"
	"gonotes/pkg/logger"
)

// DefaultTTL - время жизни записи пользователя в кэше.
const DefaultTTL = 5 * time.Minute

const (
	keyPrefix = "user:"

	msgCacheHit         = "user cache hit"
	msgErrCacheGet      = "failed to read user from cache"
	msgErrCacheSet      = "failed to write user to cache"
	msgErrCacheEvict    = "failed to evict user from cache"
	msgErrCacheDecoding = "failed to decode cached user"
)

// cachedUser - запись пользователя в Redis. Учетные данные в кэш не попадают.
type cachedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCachedUser(u *entities.User) cachedUser {
	return cachedUser{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (c cachedUser) user() *entities.User {
	return &entities.User{ID: c.ID, Email: c.Email, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// UserRepository кэширует FindByID и сбрасывает запись при любом изменении пользователя.
// Ошибки кэша не прерывают запрос: при сбое Redis чтение идет в основное хранилище.
type UserRepository struct {
	next  repositories.UserRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewUserRepository оборачивает next кэшем c.
func NewUserRepository(next repositories.UserRepository, c cache.Cache, ttl time.Duration) repositories.UserRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserRepository{next: next, cache: c, ttl: ttl}
}

// Key возвращает ключ кэша для пользователя.
func Key(id string) string {
	return keyPrefix + id
}

// FindByID ищет пользователя сначала в кэше.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", "FindByID"), zap.String("key", Key(id)))

	raw, found, err := r.cache.Get(ctx, Key(id))
	switch {
	case err != nil:
		log.Warn(ctx, msgErrCacheGet, zap.Error(err))
	case found:
		var cached cachedUser
		if err := json.Unmarshal([]byte(raw), &cached); err == nil && cached.ID != "" {
			log.Debug(ctx, msgCacheHit)
			return cached.user(), nil
		}
		log.Warn(ctx, msgErrCacheDecoding, zap.Error(err))
	}

	user, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(newCachedUser(user))
	if err == nil {
		err = r.cache.Set(ctx, Key(id), data, r.ttl)
	}
	if err != nil {
		log.Warn(ctx, msgErrCacheSet, zap.Error(err))
	}
	return user, nil
}

func (r *UserRepository) evict(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, Key(id)); err != nil {
		logger.Log(ctx).Warn(ctx, msgErrCacheEvict, zap.String("key", Key(id)), zap.Error(err))
	}
}

// Create не трогает кэш: новой записи в нем еще нет.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	return r.next.Create(ctx, user)
}

// FindByEmail идет в хранилище напрямую.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.next.FindByEmail(ctx, email)
}

// FindByResetToken идет в хранилище напрямую.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entities.User, error) {
	return r.next.FindByResetToken(ctx, token, now)
}

// UpdatePassword изменяет пароль и сбрасывает запись кэша.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	defer r.evict(ctx, id)
	return r.next.UpdatePassword(ctx, id, passwordHash)
}

// SetResetToken сохраняет токен сброса и сбрасывает запись кэша.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	defer r.evict(ctx, id)
	return r.next.SetResetToken(ctx, id, token, expires)
}

// ConsumeResetToken гасит токен и сбрасывает запись кэша найденного пользователя.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entities.User, error) {
	user, err := r.next.ConsumeResetToken(ctx, token, passwordHash, now)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, user.ID)
	return user, nil
}

// Delete удаляет пользователя и его запись в кэше.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	defer r.evict(ctx, id)
	return r.next.Delete(ctx, id)
}
