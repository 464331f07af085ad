// Package mongo содержит подключение к MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

// DefaultDatabase используется, если имя базы не задано ни в конфигурации, ни в URI.
const DefaultDatabase = "note-taking-app"

const (
	LogConnecting = "connecting to MongoDB"
	LogConnected  = "successfully connected to MongoDB"
	LogClosing    = "closing MongoDB connection"

	ErrParseURI   = "failed to parse mongo uri"
	ErrConnect    = "failed to connect to mongo"
	ErrPing       = "failed to ping mongo"
	ErrDisconnect = "failed to disconnect from mongo"
)

// Database хранит клиента и выбранную базу.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// DatabaseName возвращает имя базы: явное значение, иначе путь из URI, иначе DefaultDatabase.
func DatabaseName(uri, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrParseURI, err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return DefaultDatabase, nil
}

// Connect подключается к MongoDB и проверяет соединение.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Database, error) {
	log := logger.Log(ctx)

	name, err := DatabaseName(uri, database)
	if err != nil {
		log.Error(ctx, ErrParseURI, zap.Error(err))
		return nil, err
	}
	log.Info(ctx, LogConnecting, zap.String("database", name))

	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Error(ctx, ErrConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrConnect, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		log.Error(ctx, ErrPing, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPing, err)
	}

	log.Info(ctx, LogConnected, zap.String("database", name))
	return &Database{client: client, db: client.Database(name)}, nil
}

// DB возвращает рабочую базу.
func (d *Database) DB() *mongo.Database {
	return d.db
}

// Ping проверяет доступность сервера.
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close отключает клиента.
func (d *Database) Close(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, LogClosing)
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDisconnect, err)
	}
	return nil
}
