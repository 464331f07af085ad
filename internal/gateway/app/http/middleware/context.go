// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"gonotes/internal/auth/domain/entities"
)

type localsKey int

const (
	requestContextKey localsKey = iota
	userKey
)

// RequestContext возвращает контекст запроса с идентификатором запроса, если его выставил NewRequestIDMiddleware.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(requestContextKey).(context.Context); ok {
		return ctx
	}
	return c.Context()
}

func setRequestContext(c fiber.Ctx, ctx context.Context) {
	c.Locals(requestContextKey, ctx)
}

// CurrentUser возвращает пользователя текущей сессии.
func CurrentUser(c fiber.Ctx) (*entities.User, bool) {
	user, ok := c.Locals(userKey).(*entities.User)
	return user, ok && user != nil
}

// SetCurrentUser сохраняет пользователя сессии в запросе.
func SetCurrentUser(c fiber.Ctx, user *entities.User) {
	c.Locals(userKey, user)
}
