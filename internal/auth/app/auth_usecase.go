package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	"gonotes/internal/auth/ports/api"
	"gonotes/internal/auth/ports/repositories"
	svc "gonotes/internal/auth/ports/services"
	"gonotes/pkg/logger"
)

const (
	methodRegister             = "Register"
	methodLogin                = "Login"
	methodVerifyToken          = "VerifyToken"
	methodChangePassword       = "ChangePassword"
	methodRequestPasswordReset = "RequestPasswordReset"
	methodValidateResetToken   = "ValidateResetToken"
	methodResetPassword        = "ResetPassword"
	methodDeleteAccount        = "DeleteAccount"

	msgStartRegistration     = "starting user registration"
	msgInvalidRegistration   = "registration input rejected"
	msgEmailExists           = "user with this email already exists"
	msgUserRegistered        = "user registered successfully"
	msgLoginAttempt          = "login attempt"
	msgLoginNonExistent      = "login attempt with non-existent email"
	msgInvalidPasswordAuth   = "invalid password provided"
	msgUserLoggedIn          = "user logged in successfully"
	msgTokenRejected         = "session token rejected"
	msgTokenUserGone         = "session token references a deleted user"
	msgPasswordChanged       = "password changed"
	msgWrongCurrentPassword  = "current password mismatch"
	msgResetUnknownEmail     = "password reset requested for unknown email"
	msgResetTokenIssued      = "password reset token issued"
	msgResetTokenInvalid     = "password reset token invalid or expired"
	msgPasswordReset         = "password reset completed"
	msgNotesDeleted          = "owned notes deleted"
	msgAccountDeleted        = "account deleted"
	msgErrConfirmationEmail  = "failed to send password change confirmation"
	msgErrCheckExistingUser  = "failed to check existing user"
	msgErrHashPassword       = "failed to hash password"
	msgErrCreateUser         = "failed to create user"
	msgErrFindingUser        = "error finding user"
	msgErrVerifyingPassword  = "error verifying password"
	msgErrGenerateToken      = "failed to generate session token"
	msgErrUpdatePassword     = "failed to update password"
	msgErrGenerateResetToken = "failed to generate reset token"
	msgErrStoreResetToken    = "failed to store reset token"
	msgErrSendResetEmail     = "failed to send reset email"
	msgErrConsumeResetToken  = "failed to consume reset token"
	msgErrDeleteNotes        = "failed to delete owned notes"
	msgErrDeleteUser         = "failed to delete user"

	errCtxValidatingEmail     = "validating email"
	errCtxValidatingPassword  = "validating password"
	errCtxCheckingUser        = "checking existing user"
	errCtxEmailRegistered     = "email already registered"
	errCtxHashingPassword     = "hashing password"
	errCtxCreatingUser        = "creating user"
	errCtxFindingUser         = "finding user"
	errCtxInvalidCredentials  = "invalid credentials"
	errCtxVerifyingPassword   = "verifying password"
	errCtxGeneratingToken     = "generating session token"
	errCtxValidatingToken     = "validating session token"
	errCtxUpdatingPassword    = "updating password"
	errCtxGeneratingReset     = "generating reset token"
	errCtxStoringReset        = "storing reset token"
	errCtxSendingResetEmail   = "sending reset email"
	errCtxResetToken          = "checking reset token"
	errCtxConsumingResetToken = "consuming reset token"
	errCtxDeletingNotes       = "deleting owned notes"
	errCtxDeletingUser        = "deleting user"
)

// Options содержит настраиваемые параметры сценариев аутентификации.
type Options struct {
	// ResetTokenTTL - срок действия токена сброса пароля.
	ResetTokenTTL time.Duration
	// BaseURL - внешний адрес приложения для ссылок в письмах.
	BaseURL string
	// SiteName подставляется в письма.
	SiteName string
	// Now подменяется в тестах.
	Now func() time.Time
}

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	notes       svc.OwnedNotes
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	resetTokens svc.ResetTokenGenerator
	mailer      svc.Mailer
	emails      *emailTemplates
	opts        Options
}

// NewAuthUseCase создает сервис аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	notes svc.OwnedNotes,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	resetTokens svc.ResetTokenGenerator,
	mailer svc.Mailer,
	opts Options,
) api.AuthUseCase {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	if opts.SiteName == "" {
		opts.SiteName = "Notes"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		notes:       notes,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		resetTokens: resetTokens,
		mailer:      mailer,
		emails:      mustParseEmailTemplates(),
		opts:        opts,
	}
}

// Register создает пользователя. Сессия при регистрации не выдается.
func (a *AuthUseCaseImpl) Register(ctx context.Context, email, password string) (*entities.User, error) {
	email = entities.NormalizeEmail(email)
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	if err := entities.ValidateEmail(email); err != nil {
		log.Debug(ctx, msgInvalidRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	if err := entities.ValidatePassword(password); err != nil {
		log.Debug(ctx, msgInvalidRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	existing, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existing != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hash, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	// Уникальный индекс остается последней линией защиты от гонки двух регистраций.
	created, err := a.userRepo.Create(ctx, &entities.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Debug(ctx, msgEmailExists)
			return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, err)
		}
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", created.ID))
	return created, nil
}

// Login проверяет учетные данные и выпускает токен сессии.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*services.Session, error) {
	email = entities.NormalizeEmail(email)
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	if email == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, entities.ErrEmptyEmail)
	}
	if password == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, entities.ErrEmptyPassword)
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgInvalidPasswordAuth, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	token, expiresAt, err := a.tokenSvc.GenerateSessionToken(ctx, user.ID)
	if err != nil {
		log.Error(ctx, msgErrGenerateToken, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingToken, err)
	}

	log.Info(ctx, msgUserLoggedIn, zap.String("userID", user.ID))
	return &services.Session{UserID: user.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyToken разрешает токен сессии в существующего пользователя.
func (a *AuthUseCaseImpl) VerifyToken(ctx context.Context, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodVerifyToken))

	if token == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrUnauthorized)
	}

	userID, err := a.tokenSvc.ValidateSessionToken(ctx, token)
	if err != nil {
		log.Debug(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxValidatingToken, services.ErrUnauthorized, err)
	}

	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgTokenUserGone, zap.String("userID", userID))
			return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrUnauthorized)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (a *AuthUseCaseImpl) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodChangePassword), zap.String("userID", userID))

	if currentPassword == "" {
		return fmt.Errorf("%s: %w", errCtxValidatingPassword, entities.ErrEmptyPassword)
	}

	user, err := a.userRepo.FindByID(ctx, userID)
	if err == nil {
		// Хэш пароля читается мимо кэша.
		user, err = a.userRepo.FindByEmail(ctx, user.Email)
	}
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", errCtxFindingUser, services.ErrUnauthorized)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, currentPassword, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgWrongCurrentPassword)
		return fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	if err := entities.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	hash, err := a.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	if err := a.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Error(ctx, msgErrUpdatePassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxUpdatingPassword, err)
	}

	log.Info(ctx, msgPasswordChanged)
	return nil
}

// RequestPasswordReset выпускает токен сброса и отправляет ссылку на почту.
// Для неизвестного email возвращается nil, чтобы не раскрывать наличие учетной записи.
func (a *AuthUseCaseImpl) RequestPasswordReset(ctx context.Context, email string) error {
	email = entities.NormalizeEmail(email)
	log := logger.Log(ctx).With(zap.String("method", methodRequestPasswordReset), zap.String("email", email))

	if err := entities.ValidateEmail(email); err != nil {
		return fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetUnknownEmail)
			return nil
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	token, err := a.resetTokens.Generate(ctx)
	if err != nil {
		log.Error(ctx, msgErrGenerateResetToken, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxGeneratingReset, err)
	}

	expires := a.opts.Now().Add(a.opts.ResetTokenTTL)
	if err := a.userRepo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		log.Error(ctx, msgErrStoreResetToken, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxStoringReset, err)
	}

	body, err := a.emails.reset(resetEmailParams{
		Email:      user.Email,
		SiteName:   a.opts.SiteName,
		ResetURL:   a.resetURL(token),
		Expiration: a.opts.ResetTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtxSendingResetEmail, err)
	}

	if err := a.mailer.Send(ctx, user.Email, SubjectPasswordReset, body); err != nil {
		log.Error(ctx, msgErrSendResetEmail, zap.Error(err), zap.String("userID", user.ID))
		return fmt.Errorf("%s: %w", errCtxSendingResetEmail, err)
	}

	log.Info(ctx, msgResetTokenIssued, zap.String("userID", user.ID), zap.Time("expires", expires))
	return nil
}

// ValidateResetToken проверяет, что токен существует и не истек.
func (a *AuthUseCaseImpl) ValidateResetToken(ctx context.Context, token string) error {
	log := logger.Log(ctx).With(zap.String("method", methodValidateResetToken))

	if token == "" {
		return fmt.Errorf("%s: %w", errCtxResetToken, services.ErrInvalidOrExpiredResetToken)
	}

	if _, err := a.userRepo.FindByResetToken(ctx, token, a.opts.Now()); err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetTokenInvalid)
			return fmt.Errorf("%s: %w", errCtxResetToken, services.ErrInvalidOrExpiredResetToken)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxResetToken, err)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса. Токен одноразовый.
func (a *AuthUseCaseImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodResetPassword))

	if token == "" {
		return fmt.Errorf("%s: %w", errCtxResetToken, services.ErrInvalidOrExpiredResetToken)
	}
	if err := entities.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	hash, err := a.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	user, err := a.userRepo.ConsumeResetToken(ctx, token, hash, a.opts.Now())
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetTokenInvalid)
			return fmt.Errorf("%s: %w", errCtxResetToken, services.ErrInvalidOrExpiredResetToken)
		}
		log.Error(ctx, msgErrConsumeResetToken, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxConsumingResetToken, err)
	}

	log.Info(ctx, msgPasswordReset, zap.String("userID", user.ID))

	// Пароль уже изменен, сбой уведомления на результат не влияет.
	body, err := a.emails.changed(changedEmailParams{Email: user.Email, SiteName: a.opts.SiteName})
	if err == nil {
		err = a.mailer.Send(ctx, user.Email, SubjectPasswordChanged, body)
	}
	if err != nil {
		log.Warn(ctx, msgErrConfirmationEmail, zap.Error(err), zap.String("userID", user.ID))
	}
	return nil
}

// DeleteAccount удаляет все заметки пользователя, затем его самого.
// Удаление последовательное: сбой между шагами оставляет пользователя без заметок.
func (a *AuthUseCaseImpl) DeleteAccount(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteAccount), zap.String("userID", userID))

	if userID == "" {
		return fmt.Errorf("%s: %w", errCtxDeletingUser, entities.ErrEmptyUserID)
	}

	deleted, err := a.notes.DeleteAllByOwner(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrDeleteNotes, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingNotes, err)
	}
	log.Debug(ctx, msgNotesDeleted, zap.Int64("count", deleted))

	if err := a.userRepo.Delete(ctx, userID); err != nil {
		log.Error(ctx, msgErrDeleteUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingUser, err)
	}

	log.Info(ctx, msgAccountDeleted)
	return nil
}

func (a *AuthUseCaseImpl) resetURL(token string) string {
	return fmt.Sprintf("%s/users/reset-password/%s", a.opts.BaseURL, token)
}
