// Package main реализует точку входа приложения заметок.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/auth/adapters/mail"
	"gonotes/internal/auth/adapters/services"
	authapp "gonotes/internal/auth/app"
	svc "gonotes/internal/auth/ports/services"
	"gonotes/internal/config"
	httpServer "gonotes/internal/gateway/app/http"
	"gonotes/internal/gateway/app/http/middleware"
	"gonotes/internal/gateway/views"
	notesapp "gonotes/internal/notes/app"
	"gonotes/internal/storage"
	"gonotes/pkg/logger"
	"gonotes/pkg/resilience"
	"gonotes/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "LOGGER_MODE"
	EnvLoggerLevel = "LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitStorage          = "failed to initialize storage"
	ErrInitViews            = "failed to initialize views"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrShutdown             = "shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notes application started"
	LogServiceShutdownDone = "notes application shutdown complete"
	LogClosingStorage      = "closing storage connections"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogSMTPMailer          = "sending email through SMTP"
	LogLogMailer           = "EMAIL is not set, emails are written to the log"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", cfg.Env),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		store, err := storage.Open(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitStorage, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(services.FactoryConfig{
			SecretKey:       cfg.Auth.Secret,
			SessionTTL:      cfg.Auth.SessionTTL,
			BcryptCost:      cfg.Auth.BcryptCost,
			ResetTokenBytes: cfg.Auth.ResetTokenBytes,
		})

		log.Info(ctx, LogInitUseCases)
		authUseCase := authapp.NewAuthUseCase(
			store.Users,
			store.Notes,
			serviceFactory.PasswordService(),
			serviceFactory.TokenService(),
			serviceFactory.ResetTokens(),
			newMailer(ctx, &cfg.Mail),
			authapp.Options{
				ResetTokenTTL: cfg.Auth.ResetTokenTTL,
				BaseURL:       cfg.BaseURL,
			},
		)
		userUseCase := authapp.NewUserUseCase(store.Users, store.Notes)
		noteUseCase := notesapp.NewNoteUseCase(store.Notes)

		log.Info(ctx, LogInitHTTPServer)
		engine, err := views.New(cfg.ViewsDir)
		if err != nil {
			log.Error(ctx, ErrInitViews, zap.Error(err))
			_ = store.Close(ctx)
			exitCode = 1
			return
		}

		app := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			Views:        engine,
		})

		httpServer.SetupRouter(app, httpServer.Dependencies{
			Auth:  authUseCase,
			Users: userUseCase,
			Notes: noteUseCase,
			Store: store,
			Cookie: middleware.CookieOptions{
				Secure: cfg.IsProduction(),
				TTL:    cfg.Auth.SessionTTL,
			},
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := app.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		if err := shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return app.Shutdown()
			},
			// Закрытие хранилища.
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingStorage)
				return store.Close(ctx)
			},
		); err != nil {
			log.Error(ctx, ErrShutdown, zap.Error(err))
			exitCode = 1
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// newMailer выбирает SMTP за предохранителем при заданном EMAIL, иначе пишет письма в лог.
func newMailer(ctx context.Context, cfg *config.MailConfig) svc.Mailer {
	log := logger.Log(ctx)
	if !cfg.Enabled() {
		log.Warn(ctx, LogLogMailer)
		return mail.NewLogMailer()
	}

	log.Info(ctx, LogSMTPMailer, zap.String("host", cfg.SMTPHost), zap.Int("port", cfg.SMTPPort))
	return mail.NewBreakerMailer(
		mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Address,
			Password: cfg.Password,
			From:     cfg.Address,
		}),
		resilience.NewCircuitBreaker("smtp", resilience.DefaultCircuitBreakerConfig()),
	)
}
