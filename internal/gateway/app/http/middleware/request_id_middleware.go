package middleware

import (
	"github.com/gofiber/fiber/v3"

	"gonotes/pkg/logger"
)

// NewRequestIDMiddleware берет идентификатор из заголовка X-Request-ID или создает новый
// и возвращает его в ответе.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := logger.NewRequestIDContext(c.Context(), c.Get(logger.HeaderRequestID))
		setRequestContext(c, ctx)

		if id, ok := logger.GetRequestID(ctx); ok {
			c.Set(logger.HeaderRequestID, id)
		}
		return c.Next()
	}
}
