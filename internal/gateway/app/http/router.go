// Package http содержит компоненты HTTP сервера.
package http

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	authapi "gonotes/internal/auth/ports/api"
	"gonotes/internal/gateway/app/http/auth"
	"gonotes/internal/gateway/app/http/middleware"
	"gonotes/internal/gateway/app/http/notes"
	notesapi "gonotes/internal/notes/ports/api"
	"gonotes/pkg/logger"
)

// Константы ответов проверки здоровья.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"

	LogHealthCheckFailed = "health check failed"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies - сценарии и параметры, нужные маршрутам.
type Dependencies struct {
	Auth   authapi.AuthUseCase
	Users  authapi.UserUseCase
	Notes  notesapi.NoteUseCase
	Store  Pinger
	Cookie middleware.CookieOptions
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	authHandler := auth.NewHandler(deps.Auth, deps.Users, deps.Cookie)
	notesHandler := notes.NewHandler(deps.Notes)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewSessionMiddleware(deps.Auth.VerifyToken))

	// Защищенные маршруты передают проверку сессии в слот middleware: fiber вызывает его до обработчика.
	pageAuth := middleware.RequireUser(false)
	apiAuth := middleware.RequireUser(true)

	app.Get("/healthz", healthHandler(deps.Store))
	app.Get("/", authHandler.Landing)

	users := app.Group("/users")
	users.Get("/register", authHandler.RegisterPage)
	users.Post("/register", authHandler.Register)
	users.Get("/login", authHandler.LoginPage)
	users.Post("/login", authHandler.Login)
	users.Get("/logout", authHandler.Logout)
	users.Get("/forgot-password", authHandler.ForgotPasswordPage)
	users.Post("/forgot-password", authHandler.ForgotPassword)
	users.Get("/reset-password/:token", authHandler.ResetPasswordPage)
	users.Post("/reset-password/:token", authHandler.ResetPassword)
	users.Get("/profile", authHandler.Profile, pageAuth)
	users.Get("/change-password", authHandler.Profile, pageAuth)
	users.Post("/change-password", authHandler.ChangePassword, pageAuth)
	users.Post("/delete-user-profile", authHandler.DeleteProfile, pageAuth)

	noteRoutes := app.Group("/notes")
	noteRoutes.Get("/", notesHandler.List, pageAuth)
	noteRoutes.Get("/archived", notesHandler.ListArchived, pageAuth)
	noteRoutes.Get("/create", notesHandler.CreatePage, pageAuth)
	noteRoutes.Post("/create", notesHandler.Create, apiAuth)
	noteRoutes.Get("/:id/content", notesHandler.Content, apiAuth)
	noteRoutes.Get("/:id/edit", notesHandler.Edit, pageAuth)
	noteRoutes.Post("/:id/update", notesHandler.Update, apiAuth)
	noteRoutes.Delete("/:id/delete", notesHandler.Delete, apiAuth)
	noteRoutes.Post("/:id/archive", notesHandler.Archive, apiAuth)
	noteRoutes.Post("/:id/unarchive", notesHandler.Unarchive, apiAuth)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}

func healthHandler(store Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		requestCtx := middleware.RequestContext(c)
		if err := store.Ping(requestCtx); err != nil {
			logger.Log(requestCtx).Warn(requestCtx, LogHealthCheckFailed, zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": StatusUnavailable})
		}
		return c.JSON(fiber.Map{"status": StatusOK})
	}
}
