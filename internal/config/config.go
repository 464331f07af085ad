// Package config содержит конфигурацию приложения заметок.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	LogLoadingConfig    = "loading application configuration"
	LogConfigLoaded     = "configuration loaded successfully"
	LogDefaultSecret    = "SECRET is not set, using the development signing key"
	ErrFailedLoadConfig = "failed to load configuration"
)

// EnvProduction - значение APP_ENV/NODE_ENV для боевого окружения.
const EnvProduction = "production"

// ErrInvalidConfig возвращается при недопустимых значениях.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config представляет полную конфигурацию приложения.
type Config struct {
	Env      string `env:"APP_ENV,NODE_ENV" env-default:"development"`
	BaseURL  string `env:"APP_BASE_URL" env-default:"http://localhost:3000"`
	ViewsDir string `env:"VIEWS_DIR"`

	HTTP     HTTPConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Mail     MailConfig
	Logging  LoggingConfig
	Shutdown ShutdownConfig
}

// Load загружает конфигурацию из переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogLoadingConfig)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if cfg.Auth.Secret == DefaultSecret && cfg.IsProduction() {
		log.Warn(ctx, LogDefaultSecret)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("env", cfg.Env),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("smtp_enabled", cfg.Mail.Enabled()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return &cfg, nil
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown STORAGE_DRIVER %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("%w: SECRET must not be empty", ErrInvalidConfig)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("%w: RESET_TOKEN_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

// IsProduction сообщает, запущено ли приложение в боевом окружении.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
