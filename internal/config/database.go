package config

import (
	"fmt"
	"time"
)

// Поддерживаемые хранилища.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// StorageConfig выбирает хранилище пользователей и заметок.
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"mongo"`
}

// MongoConfig содержит настройки подключения к MongoDB.
type MongoConfig struct {
	URI            string        `env:"MONGO_URI" env-default:"mongodb://localhost:27017/note-taking-app"`
	Database       string        `env:"MONGO_DATABASE"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host          string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port          int    `env:"POSTGRES_PORT" env-default:"5432"`
	User          string `env:"POSTGRES_USER" env-default:"postgres"`
	Password      string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Database      string `env:"POSTGRES_DB" env-default:"notes"`
	MinConn       int    `env:"POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn       int    `env:"POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsDir string `env:"POSTGRES_MIGRATIONS_DIR" env-default:"migrations/postgres"`
}

// GetDSN возвращает строку подключения к Postgres.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// RedisConfig представляет конфигурацию кэша пользователей.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED" env-default:"false"`
	Host     string        `env:"REDIS_HOST" env-default:"localhost"`
	Port     int           `env:"REDIS_PORT" env-default:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" env-default:"10"`
	UserTTL  time.Duration `env:"REDIS_USER_TTL" env-default:"5m"`
}
