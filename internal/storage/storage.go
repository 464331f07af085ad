// Package storage собирает хранилища пользователей и заметок по выбранному драйверу.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	authcache "gonotes/internal/auth/adapters/cache"
	authmongo "gonotes/internal/auth/adapters/mongo"
	authpostgres "gonotes/internal/auth/adapters/postgres"
	userrepos "gonotes/internal/auth/ports/repositories"
	"gonotes/internal/config"
	notesmongo "gonotes/internal/notes/adapters/mongo"
	notespostgres "gonotes/internal/notes/adapters/postgres"
	noterepos "gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/db/mongo"
	"gonotes/pkg/db/postgres"
	"gonotes/pkg/db/redis"
	"gonotes/pkg/logger"
)

const (
	LogOpening    = "opening storage"
	LogOpened     = "storage ready"
	LogUserCache  = "user cache enabled"
	ErrOpen       = "failed to open storage"
	ErrIndexes    = "failed to create indexes"
	ErrMigrations = "failed to apply migrations"
	ErrCache      = "failed to connect user cache"
)

// ErrUnknownDriver возвращается для драйвера, отличного от mongo и postgres.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Resource - внешнее соединение, которое хранилище проверяет и закрывает.
type Resource interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Storage держит репозитории и соединения, на которых они построены.
type Storage struct {
	Users userrepos.UserRepository
	Notes noterepos.NoteRepository

	resources []Resource
}

// New собирает Storage из готовых репозиториев.
func New(users userrepos.UserRepository, notes noterepos.NoteRepository, resources ...Resource) *Storage {
	return &Storage{Users: users, Notes: notes, resources: resources}
}

// WithUserCache кэширует пользователей в c. Соединение кэша закрывается вместе с хранилищем.
func (s *Storage) WithUserCache(c *redis.Client, ttl time.Duration) *Storage {
	s.Users = authcache.NewUserRepository(s.Users, c, ttl)
	s.resources = append(s.resources, c)
	return s
}

// Open подключается к хранилищу из cfg и подготавливает схему.
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	log := logger.Log(ctx).With(zap.String("driver", cfg.Storage.Driver))
	log.Info(ctx, LogOpening)

	var (
		s   *Storage
		err error
	)
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		s, err = openMongo(ctx, cfg.Mongo)
	case config.DriverPostgres:
		s, err = openPostgres(ctx, cfg.Postgres)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
	if err != nil {
		log.Error(ctx, ErrOpen, zap.Error(err))
		return nil, err
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, &redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("%s: %w", ErrCache, err)
		}
		s.WithUserCache(client, cfg.Redis.UserTTL)
		log.Info(ctx, LogUserCache, zap.Duration("ttl", cfg.Redis.UserTTL))
	}

	log.Info(ctx, LogOpened)
	return s, nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (*Storage, error) {
	db, err := mongo.Connect(ctx, cfg.URI, cfg.Database, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}

	if err := errors.Join(
		authmongo.EnsureIndexes(ctx, db.DB()),
		notesmongo.EnsureIndexes(ctx, db.DB()),
	); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%s: %w", ErrIndexes, err)
	}

	return New(
		authmongo.NewUserRepository(db.DB()),
		notesmongo.NewNoteRepository(db.DB()),
		db,
	), nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*Storage, error) {
	if err := postgres.Migrate(ctx, cfg.GetConnectionURL(), cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMigrations, err)
	}

	db, err := postgres.New(ctx, cfg.GetDSN(), postgres.PoolOptions{
		MinConn: cfg.MinConn,
		MaxConn: cfg.MaxConn,
	})
	if err != nil {
		return nil, err
	}

	return New(
		authpostgres.NewRepositoryFactory(db.Pool()).UserRepository(),
		notespostgres.NewRepositoryFactory(db.Pool()).NoteRepository(),
		postgresResource{db},
	), nil
}

// postgresResource приводит Close без ошибки к интерфейсу Resource.
type postgresResource struct {
	db *postgres.Database
}

func (p postgresResource) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p postgresResource) Close(ctx context.Context) error {
	p.db.Close(ctx)
	return nil
}

// Ping проверяет все соединения.
func (s *Storage) Ping(ctx context.Context) error {
	var errs []error
	for _, r := range s.resources {
		errs = append(errs, r.Ping(ctx))
	}
	return errors.Join(errs...)
}

// Close закрывает соединения в обратном порядке открытия.
func (s *Storage) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.resources) - 1; i >= 0; i-- {
		errs = append(errs, s.resources[i].Close(ctx))
	}
	return errors.Join(errs...)
}
