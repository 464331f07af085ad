package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	"gonotes/internal/auth/ports/repositories"
	"gonotes/pkg/logger"
)

// uniqueViolation - SQLSTATE нарушения уникального индекса.
const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, reset_password_token, reset_password_expires, created_at, updated_at`

const (
	queryCreateUser = `
        INSERT INTO users (email, password_hash)
        VALUES ($1, $2)
        RETURNING ` + userColumns

	queryFindUserByID = `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1`

	queryFindUserByEmail = `
        SELECT ` + userColumns + `
        FROM users
        WHERE lower(email) = lower($1)`

	queryUpdatePassword = `
        UPDATE users
        SET password_hash = $2, updated_at = now()
        WHERE id = $1`

	querySetResetToken = `
        UPDATE users
        SET reset_password_token = $2, reset_password_expires = $3, updated_at = now()
        WHERE id = $1`

	queryFindByResetToken = `
        SELECT ` + userColumns + `
        FROM users
        WHERE reset_password_token = $1 AND reset_password_expires > $2`

	queryConsumeResetToken = `
        UPDATE users
        SET password_hash = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = now()
        WHERE reset_password_token = $1 AND reset_password_expires > $3
        RETURNING ` + userColumns

	queryDeleteUser = `
        DELETE FROM users
        WHERE id = $1`
)

// PgxPoolInterface - подмножество pgxpool.Pool, нужное репозиториям. Ему удовлетворяют pgx.Tx и pgxmock.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// UserRepository реализует repositories.UserRepository для Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var (
		user  entities.User
		token *string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&token,
		&user.ResetPasswordExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if token != nil {
		user.ResetPasswordToken = *token
	}
	return &user, nil
}

// validID отсекает строки, которые не могут быть UUID, чтобы не получать ошибку приведения типа от Postgres.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// Create создает пользователя. Повтор email дает services.ErrEmailAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	created, err := scanUser(r.pool.QueryRow(ctx, queryCreateUser, user.Email, user.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			log.Debug(ctx, "duplicate email", zap.String("email", user.Email))
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByID"))

	if !validID(id) {
		return nil, entities.ErrUserNotFound
	}

	user, err := scanUser(r.pool.QueryRow(ctx, queryFindUserByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("id", id))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by id", zap.Error(err))
		return nil, fmt.Errorf("error querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail находит пользователя по email без учета регистра.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByEmail"))

	user, err := scanUser(r.pool.QueryRow(ctx, queryFindUserByEmail, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("email", email))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return user, nil
}

// UpdatePassword записывает новый хэш пароля.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execByID(ctx, "UpdatePassword", queryUpdatePassword, id, passwordHash)
}

// SetResetToken сохраняет токен сброса пароля и срок его действия.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.execByID(ctx, "SetResetToken", querySetResetToken, id, token, expires.UTC())
}

// FindByResetToken находит пользователя по действующему токену сброса.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByResetToken"))

	user, err := scanUser(r.pool.QueryRow(ctx, queryFindByResetToken, token, now.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by reset token", zap.Error(err))
		return nil, fmt.Errorf("error querying user by reset token: %w", err)
	}
	return user, nil
}

// ConsumeResetToken одним UPDATE меняет пароль и гасит токен.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "ConsumeResetToken"))

	user, err := scanUser(r.pool.QueryRow(ctx, queryConsumeResetToken, token, passwordHash, now.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error consuming reset token", zap.Error(err))
		return nil, fmt.Errorf("error consuming reset token: %w", err)
	}
	return user, nil
}

// Delete удаляет пользователя по ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.execByID(ctx, "Delete", queryDeleteUser, id)
}

func (r *UserRepository) execByID(ctx context.Context, method, query, id string, args ...any) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	if !validID(id) {
		return entities.ErrUserNotFound
	}

	result, err := r.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		log.Error(ctx, "error executing user statement", zap.Error(err))
		return fmt.Errorf("error executing %s: %w", method, err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found", zap.String("id", id))
		return entities.ErrUserNotFound
	}
	return nil
}
