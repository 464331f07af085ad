// Package mongo содержит хранилище пользователей на MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	"gonotes/internal/auth/ports/repositories"
	"gonotes/pkg/logger"
)

// UsersCollection - имя коллекции пользователей.
const UsersCollection = "users"

const (
	fieldID                   = "_id"
	fieldEmail                = "email"
	fieldPassword             = "password"
	fieldResetPasswordToken   = "resetPasswordToken"
	fieldResetPasswordExpires = "resetPasswordExpires"
	fieldUpdatedAt            = "updatedAt"
)

type userDocument struct {
	ID                   primitive.ObjectID `bson:"_id"`
	Email                string             `bson:"email"`
	Password             string             `bson:"password"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time         `bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entities.User {
	return &entities.User{
		ID:                   d.ID.Hex(),
		Email:                d.Email,
		PasswordHash:         d.Password,
		ResetPasswordToken:   d.ResetPasswordToken,
		ResetPasswordExpires: d.ResetPasswordExpires,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

// UserRepository реализует repositories.UserRepository для MongoDB.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserRepository создает репозиторий пользователей поверх базы db.
func NewUserRepository(db *mongo.Database) repositories.UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection), now: time.Now}
}

// EnsureIndexes создает уникальный индекс по email.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("error creating users indexes: %w", err)
	}
	return nil
}

// timestamp обрезает время до миллисекунд, с которыми работает BSON.
func (r *UserRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// Create создает пользователя. Повтор email дает services.ErrEmailAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	now := r.timestamp()
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Debug(ctx, "duplicate email", zap.String("email", user.Email))
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return doc.toEntity(), nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, entities.ErrUserNotFound
	}
	return r.findOne(ctx, "FindByID", bson.M{fieldID: oid})
}

// FindByEmail находит пользователя по нормализованному email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "FindByEmail", bson.M{fieldEmail: email})
}

// FindByResetToken находит пользователя по действующему токену сброса.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entities.User, error) {
	return r.findOne(ctx, "FindByResetToken", resetTokenFilter(token, now))
}

func resetTokenFilter(token string, now time.Time) bson.M {
	return bson.M{
		fieldResetPasswordToken:   token,
		fieldResetPasswordExpires: bson.M{"$gt": now.UTC()},
	}
}

func (r *UserRepository) findOne(ctx context.Context, method string, filter bson.M) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Debug(ctx, "user not found")
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user", zap.Error(err))
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return doc.toEntity(), nil
}

// UpdatePassword записывает новый хэш пароля.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, "UpdatePassword", id, bson.M{
		"$set": bson.M{fieldPassword: passwordHash, fieldUpdatedAt: r.timestamp()},
	})
}

// SetResetToken сохраняет токен сброса пароля и срок его действия.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.updateByID(ctx, "SetResetToken", id, bson.M{
		"$set": bson.M{
			fieldResetPasswordToken:   token,
			fieldResetPasswordExpires: expires.UTC(),
			fieldUpdatedAt:            r.timestamp(),
		},
	})
}

func (r *UserRepository) updateByID(ctx context.Context, method, id string, update bson.M) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return entities.ErrUserNotFound
	}

	result, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		log.Error(ctx, "error updating user", zap.Error(err))
		return fmt.Errorf("error executing %s: %w", method, err)
	}
	if result.MatchedCount == 0 {
		log.Debug(ctx, "user not found", zap.String("id", id))
		return entities.ErrUserNotFound
	}
	return nil
}

// ConsumeResetToken меняет пароль и снимает токен одной операцией findAndModify.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "ConsumeResetToken"))

	update := bson.M{
		"$set":   bson.M{fieldPassword: passwordHash, fieldUpdatedAt: r.timestamp()},
		"$unset": bson.M{fieldResetPasswordToken: "", fieldResetPasswordExpires: ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, resetTokenFilter(token, now), update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error consuming reset token", zap.Error(err))
		return nil, fmt.Errorf("error consuming reset token: %w", err)
	}

	return doc.toEntity(), nil
}

// Delete удаляет пользователя по ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Delete"))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return entities.ErrUserNotFound
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{fieldID: oid})
	if err != nil {
		log.Error(ctx, "error deleting user", zap.Error(err))
		return fmt.Errorf("error deleting user: %w", err)
	}
	if result.DeletedCount == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}
