package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	"gonotes/pkg/logger"
)

// SessionCookie - имя cookie с токеном сессии.
const SessionCookie = "jwt"

// LoginPath - страница входа, куда отправляются анонимные запросы страниц.
const LoginPath = "/users/login"

const (
	LogSessionRejected     = "session cookie rejected"
	LogSessionVerifyFailed = "failed to verify session"
	LogAnonymous           = "anonymous request to protected route"

	MsgUnauthorized        = "Unauthorized"
	MsgInternalServerError = "Internal Server Error"
)

// TokenVerifier разрешает токен сессии в пользователя.
type TokenVerifier func(ctx context.Context, token string) (*entities.User, error)

// CookieOptions задает параметры cookie сессии.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

// SetSessionCookie выставляет HTTP-only cookie сессии.
func SetSessionCookie(c fiber.Ctx, opts CookieOptions, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(opts.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   opts.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie удаляет cookie сессии. Path совпадает с выставленным в SetSessionCookie.
func ClearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// NewSessionMiddleware разрешает cookie сессии в пользователя и кладет его в запрос.
// Анонимные запросы пропускаются дальше, недействительная cookie удаляется.
// Сбой проверки, не связанный с самим токеном, отвечает 500 и оставляет cookie.
func NewSessionMiddleware(verify TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		requestCtx := RequestContext(c)
		user, err := verify(requestCtx, token)
		if errors.Is(err, services.ErrUnauthorized) {
			logger.Log(requestCtx).Debug(requestCtx, LogSessionRejected, zap.Error(err))
			ClearSessionCookie(c)
			return c.Next()
		}
		if err != nil {
			logger.Log(requestCtx).Error(requestCtx, LogSessionVerifyFailed, zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": MsgInternalServerError,
			})
		}

		SetCurrentUser(c, user)
		return c.Next()
	}
}

// RequireUser пропускает только запросы с действующей сессией.
// JSON-клиенты получают 401, запросы страниц перенаправляются на страницу входа.
func RequireUser(jsonAPI bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, ok := CurrentUser(c); ok {
			return c.Next()
		}

		requestCtx := RequestContext(c)
		logger.Log(requestCtx).Debug(requestCtx, LogAnonymous, zap.String("path", c.Path()))

		if jsonAPI || WantsJSON(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": MsgUnauthorized,
			})
		}
		return c.Redirect().Status(fiber.StatusFound).To(LoginPath)
	}
}

// WantsJSON сообщает, предпочитает ли клиент JSON странице.
func WantsJSON(c fiber.Ctx) bool {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
