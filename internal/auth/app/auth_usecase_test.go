package app_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gonotes/internal/auth/adapters/services"
	"gonotes/internal/auth/app"
	"gonotes/internal/auth/domain/entities"
	domainservices "gonotes/internal/auth/domain/services"
	"gonotes/internal/auth/ports/api"
	"gonotes/internal/auth/ports/repositories"
	portservices "gonotes/internal/auth/ports/services"
)

const (
	testEmail    = "john@example.com"
	testPassword = "correct horse"
	testBaseURL  = "https://notes.example.com/"
)

var resetLink = regexp.MustCompile(`https://notes\.example\.com/users/reset-password/([0-9a-f]+)`)

type fixture struct {
	auth   api.AuthUseCase
	users  *memoryUsers
	notes  *memoryNotes
	mailer *recordingMailer
	now    time.Time
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  newMemoryUsers(),
		notes:  newMemoryNotes(),
		mailer: &recordingMailer{},
		now:    time.Now(),
	}
	f.auth = newAuth(f.users, f.notes, f.mailer, f.clock)
	return f
}

func newAuth(users repositories.UserRepository, notes portservices.OwnedNotes, mailer portservices.Mailer, now func() time.Time) api.AuthUseCase {
	factory := services.NewServiceFactory(services.FactoryConfig{
		SecretKey:  "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	return app.NewAuthUseCase(users, notes, factory.PasswordService(), factory.TokenService(), factory.ResetTokens(), mailer, app.Options{
		ResetTokenTTL: time.Hour,
		BaseURL:       testBaseURL,
		Now:           now,
	})
}

func (f *fixture) register(t *testing.T) *entities.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return user
}

func (f *fixture) requestReset(t *testing.T) string {
	t.Helper()
	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), testEmail))
	msg, ok := f.mailer.last()
	require.True(t, ok)
	match := resetLink.FindStringSubmatch(msg.Body)
	require.Len(t, match, 2, "reset email must contain the reset link: %s", msg.Body)
	return match[1]
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and hashes password", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.auth.Register(ctx, "  John@Example.COM ", testPassword)
		require.NoError(t, err)
		assert.Equal(t, testEmail, user.Email)
		assert.NotEqual(t, testPassword, user.PasswordHash)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("any non-empty password is accepted", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.auth.Register(ctx, "a@b.co", "abc")
		require.NoError(t, err)
		_, err = f.auth.Login(ctx, "a@b.co", "abc")
		require.NoError(t, err)
	})

	t.Run("email is unique regardless of case", func(t *testing.T) {
		f := newFixture(t)
		f.register(t)

		_, err := f.auth.Register(ctx, "JOHN@example.com", "another password")
		require.ErrorIs(t, err, domainservices.ErrEmailAlreadyExists)
		require.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t)
		tests := []struct {
			email, password string
			want            error
		}{
			{"", testPassword, entities.ErrEmptyEmail},
			{"not-an-email", testPassword, entities.ErrInvalidEmail},
			{testEmail, "", entities.ErrEmptyPassword},
			{testEmail, strings.Repeat("x", entities.MaxPasswordBytes+1), entities.ErrPasswordTooLong},
		}
		for _, tt := range tests {
			_, err := f.auth.Register(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, entities.ErrValidation)
		}
	})

	t.Run("duplicate detected by storage", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("FindByEmail", mock.Anything, testEmail).Return(nil, entities.ErrUserNotFound).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, domainservices.ErrEmailAlreadyExists).Once()

		_, err := newAuth(repo, newMemoryNotes(), &recordingMailer{}, time.Now).Register(ctx, testEmail, testPassword)
		require.ErrorIs(t, err, domainservices.ErrEmailAlreadyExists)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("FindByEmail", mock.Anything, testEmail).Return(nil, errDatabaseOperation).Once()

		_, err := newAuth(repo, newMemoryNotes(), &recordingMailer{}, time.Now).Register(ctx, testEmail, testPassword)
		require.ErrorIs(t, err, errDatabaseOperation)
		repo.AssertExpectations(t)
	})
}

func TestLoginAndVerifyToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registered := f.register(t)

	session, err := f.auth.Login(ctx, "JOHN@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, session.UserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	user, err := f.auth.VerifyToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = f.auth.Login(ctx, testEmail, "wrong password")
	require.ErrorIs(t, err, domainservices.ErrInvalidCredentials)
	require.ErrorIs(t, err, domainservices.ErrUnauthorized)

	_, err = f.auth.Login(ctx, "nobody@example.com", testPassword)
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	_, err = f.auth.Login(ctx, testEmail, "")
	require.ErrorIs(t, err, entities.ErrValidation)
}

func TestVerifyTokenRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t)

	session, err := f.auth.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", session.Token + "x"} {
		_, err := f.auth.VerifyToken(ctx, token)
		require.ErrorIs(t, err, domainservices.ErrUnauthorized, "token %q", token)
	}

	require.NoError(t, f.auth.DeleteAccount(ctx, session.UserID))
	_, err = f.auth.VerifyToken(ctx, session.Token)
	require.ErrorIs(t, err, domainservices.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.register(t)

	err := f.auth.ChangePassword(ctx, user.ID, "wrong password", "brand new pass")
	require.ErrorIs(t, err, domainservices.ErrInvalidCredentials)

	err = f.auth.ChangePassword(ctx, user.ID, testPassword, strings.Repeat("x", entities.MaxPasswordBytes+1))
	require.ErrorIs(t, err, entities.ErrPasswordTooLong)

	err = f.auth.ChangePassword(ctx, user.ID, "", "brand new pass")
	require.ErrorIs(t, err, entities.ErrEmptyPassword)

	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, testPassword, "brand new pass"))

	_, err = f.auth.Login(ctx, testEmail, testPassword)
	require.ErrorIs(t, err, domainservices.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, testEmail, "brand new pass")
	require.NoError(t, err)

	err = f.auth.ChangePassword(ctx, "missing", testPassword, "brand new pass")
	require.ErrorIs(t, err, domainservices.ErrUnauthorized)
}

func TestChangePasswordReadsHashPastCache(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(mockUserRepository)
	repo.On("FindByID", mock.Anything, "user-1").
		Return(&entities.User{ID: "user-1", Email: testEmail}, nil).Once()
	repo.On("FindByEmail", mock.Anything, testEmail).
		Return(&entities.User{ID: "user-1", Email: testEmail, PasswordHash: string(hash)}, nil).Once()
	repo.On("UpdatePassword", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil).Once()

	uc := newAuth(repo, newMemoryNotes(), &recordingMailer{}, time.Now)
	require.NoError(t, uc.ChangePassword(ctx, "user-1", testPassword, "brand new pass"))
	repo.AssertExpectations(t)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t)

	token := f.requestReset(t)
	msg, _ := f.mailer.last()
	assert.Equal(t, testEmail, msg.To)
	assert.Equal(t, app.SubjectPasswordReset, msg.Subject)

	require.NoError(t, f.auth.ValidateResetToken(ctx, token))
	require.NoError(t, f.auth.ResetPassword(ctx, token, "reset password 1"))

	confirmation, _ := f.mailer.last()
	assert.Equal(t, app.SubjectPasswordChanged, confirmation.Subject)
	assert.Equal(t, testEmail, confirmation.To)

	_, err := f.auth.Login(ctx, testEmail, "reset password 1")
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, testEmail, testPassword)
	require.ErrorIs(t, err, domainservices.ErrUnauthorized)

	err = f.auth.ResetPassword(ctx, token, "reset password 2")
	require.ErrorIs(t, err, domainservices.ErrInvalidOrExpiredResetToken)
	require.ErrorIs(t, f.auth.ValidateResetToken(ctx, token), domainservices.ErrInvalidOrExpiredResetToken)
}

func TestPasswordResetExpires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t)

	token := f.requestReset(t)
	f.now = f.now.Add(time.Hour)

	require.ErrorIs(t, f.auth.ValidateResetToken(ctx, token), domainservices.ErrInvalidOrExpiredResetToken)
	require.ErrorIs(t, f.auth.ResetPassword(ctx, token, "reset password 1"), domainservices.ErrInvalidOrExpiredResetToken)

	_, err := f.auth.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
}

func TestPasswordResetNewRequestReplacesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t)

	first := f.requestReset(t)
	second := f.requestReset(t)
	require.NotEqual(t, first, second)

	require.ErrorIs(t, f.auth.ValidateResetToken(ctx, first), domainservices.ErrInvalidOrExpiredResetToken)
	require.NoError(t, f.auth.ValidateResetToken(ctx, second))
}

func TestRequestPasswordResetEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email sends nothing", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.auth.RequestPasswordReset(ctx, "nobody@example.com"))
		_, sent := f.mailer.last()
		assert.False(t, sent)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newFixture(t)
		require.ErrorIs(t, f.auth.RequestPasswordReset(ctx, "nope"), entities.ErrInvalidEmail)
	})

	t.Run("mail failure is reported", func(t *testing.T) {
		f := newFixture(t)
		f.register(t)
		f.mailer.err = errDatabaseOperation

		require.ErrorIs(t, f.auth.RequestPasswordReset(ctx, testEmail), errDatabaseOperation)
	})

	t.Run("empty reset token", func(t *testing.T) {
		f := newFixture(t)
		require.ErrorIs(t, f.auth.ValidateResetToken(ctx, ""), domainservices.ErrInvalidOrExpiredResetToken)
		require.ErrorIs(t, f.auth.ResetPassword(ctx, "", "reset password 1"), domainservices.ErrInvalidOrExpiredResetToken)
	})

	t.Run("rejected new password keeps token", func(t *testing.T) {
		f := newFixture(t)
		f.register(t)
		token := f.requestReset(t)

		require.ErrorIs(t, f.auth.ResetPassword(ctx, token, ""), entities.ErrEmptyPassword)
		require.NoError(t, f.auth.ValidateResetToken(ctx, token))
	})
}

func TestResetPasswordConfirmationFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t)
	token := f.requestReset(t)

	f.mailer.err = errDatabaseOperation
	require.NoError(t, f.auth.ResetPassword(ctx, token, "reset password 1"))

	_, err := f.auth.Login(ctx, testEmail, "reset password 1")
	require.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("removes notes then user", func(t *testing.T) {
		f := newFixture(t)
		user := f.register(t)
		f.notes.add(user.ID, 3)
		f.notes.add("someone-else", 2)

		require.NoError(t, f.auth.DeleteAccount(ctx, user.ID))

		count, _ := f.notes.CountByOwner(ctx, user.ID)
		assert.Zero(t, count)
		other, _ := f.notes.CountByOwner(ctx, "someone-else")
		assert.Equal(t, int64(2), other)

		_, err := f.users.FindByID(ctx, user.ID)
		require.ErrorIs(t, err, entities.ErrUserNotFound)

		_, err = f.auth.Register(ctx, testEmail, testPassword)
		require.NoError(t, err, "email is free again after deletion")
	})

	t.Run("notes failure keeps user", func(t *testing.T) {
		repo := new(mockUserRepository)
		notes := new(mockOwnedNotes)
		notes.On("DeleteAllByOwner", mock.Anything, "user-1").Return(int64(0), errDatabaseOperation).Once()

		err := newAuth(repo, notes, &recordingMailer{}, time.Now).DeleteAccount(ctx, "user-1")
		require.ErrorIs(t, err, errDatabaseOperation)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		notes.AssertExpectations(t)
	})

	t.Run("empty user id", func(t *testing.T) {
		f := newFixture(t)
		require.ErrorIs(t, f.auth.DeleteAccount(ctx, ""), entities.ErrEmptyUserID)
	})
}
