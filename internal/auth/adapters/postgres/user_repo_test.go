package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonotes/internal/auth/adapters/postgres"
	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	"gonotes/pkg/logger"
)

const (
	testUserID = "5b0c2f4e-9f43-4d8e-9a57-3d6c1f1e2a10"
	testEmail  = "john@example.com"
	testHash   = "$2a$10$hash"
)

var (
	errDatabaseConnection = errors.New("database connection failed")
	userColumns           = []string{"id", "email", "password_hash", "reset_password_token", "reset_password_expires", "created_at", "updated_at"}
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func userRow(token *string, expires *time.Time) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userColumns).AddRow(testUserID, testEmail, testHash, token, expires, now, now)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := testContext(t)

	t.Run("success", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users \(email, password_hash\)`).
			WithArgs(testEmail, testHash).
			WillReturnRows(userRow(nil, nil))

		repo := postgres.NewUserRepository(mock)
		user, err := repo.Create(ctx, &entities.User{Email: testEmail, PasswordHash: testHash})

		require.NoError(t, err)
		assert.Equal(t, testUserID, user.ID)
		assert.Empty(t, user.ResetPasswordToken)
		assert.Nil(t, user.ResetPasswordExpires)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(testEmail, testHash).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		repo := postgres.NewUserRepository(mock)
		_, err := repo.Create(ctx, &entities.User{Email: testEmail, PasswordHash: testHash})

		require.ErrorIs(t, err, services.ErrEmailAlreadyExists)
	})

	t.Run("database error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(testEmail, testHash).
			WillReturnError(errDatabaseConnection)

		repo := postgres.NewUserRepository(mock)
		_, err := repo.Create(ctx, &entities.User{Email: testEmail, PasswordHash: testHash})

		require.ErrorIs(t, err, errDatabaseConnection)
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	ctx := testContext(t)

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
			WithArgs(testUserID).
			WillReturnRows(userRow(nil, nil))

		user, err := postgres.NewUserRepository(mock).FindByID(ctx, testUserID)
		require.NoError(t, err)
		assert.Equal(t, testEmail, user.Email)
	})

	t.Run("no rows", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
			WithArgs(testUserID).
			WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewUserRepository(mock).FindByID(ctx, testUserID)
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		mock := newMock(t)

		_, err := postgres.NewUserRepository(mock).FindByID(ctx, "not-a-uuid")
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := testContext(t)
	mock := newMock(t)

	mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs(testEmail).
		WillReturnError(pgx.ErrNoRows)

	_, err := postgres.NewUserRepository(mock).FindByEmail(ctx, testEmail)
	require.ErrorIs(t, err, entities.ErrUserNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := testContext(t)

	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE users\s+SET password_hash = \$2`).
			WithArgs(testUserID, "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, postgres.NewUserRepository(mock).UpdatePassword(ctx, testUserID, "new-hash"))
	})

	t.Run("missing user", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE users`).
			WithArgs(testUserID, "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := postgres.NewUserRepository(mock).UpdatePassword(ctx, testUserID, "new-hash")
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestUserRepository_SetResetToken(t *testing.T) {
	ctx := testContext(t)
	mock := newMock(t)
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`SET reset_password_token = \$2, reset_password_expires = \$3`).
		WithArgs(testUserID, "tok", expires).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, postgres.NewUserRepository(mock).SetResetToken(ctx, testUserID, "tok", expires))
}

func TestUserRepository_ResetTokenLifecycle(t *testing.T) {
	ctx := testContext(t)
	now := time.Date(2026, 1, 1, 11, 30, 0, 0, time.UTC)
	expires := now.Add(30 * time.Minute)
	token := "abc123"

	t.Run("find pending", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`WHERE reset_password_token = \$1 AND reset_password_expires > \$2`).
			WithArgs(token, now).
			WillReturnRows(userRow(&token, &expires))

		user, err := postgres.NewUserRepository(mock).FindByResetToken(ctx, token, now)
		require.NoError(t, err)
		assert.Equal(t, token, user.ResetPasswordToken)
		require.NotNil(t, user.ResetPasswordExpires)
		assert.True(t, user.HasPendingReset(now))
	})

	t.Run("consume clears token", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SET password_hash = \$2, reset_password_token = NULL, reset_password_expires = NULL`).
			WithArgs(token, "new-hash", now).
			WillReturnRows(userRow(nil, nil))

		user, err := postgres.NewUserRepository(mock).ConsumeResetToken(ctx, token, "new-hash", now)
		require.NoError(t, err)
		assert.Empty(t, user.ResetPasswordToken)
	})

	t.Run("consume with spent or expired token", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE users`).
			WithArgs(token, "new-hash", now).
			WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewUserRepository(mock).ConsumeResetToken(ctx, token, "new-hash", now)
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := testContext(t)

	t.Run("deleted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(testUserID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, postgres.NewUserRepository(mock).Delete(ctx, testUserID))
	})

	t.Run("database error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(testUserID).
			WillReturnError(errDatabaseConnection)

		err := postgres.NewUserRepository(mock).Delete(ctx, testUserID)
		require.ErrorIs(t, err, errDatabaseConnection)
	})
}

func TestRepositoryFactory(t *testing.T) {
	mock := newMock(t)
	assert.NotNil(t, postgres.NewRepositoryFactory(mock).UserRepository())
}
