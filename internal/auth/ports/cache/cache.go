// Package cache определяет интерфейсы для кэширования.
package cache

import (
	"context"
	"time"
)

// Cache определяет интерфейс для работы с кэшем.
// Отсутствующий ключ возвращает found == false без ошибки.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)

	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
}
