package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gonotes/internal/auth/domain/services"
	"gonotes/internal/auth/ports/api"
	"gonotes/internal/auth/ports/repositories"
	svc "gonotes/internal/auth/ports/services"
	"gonotes/pkg/logger"
)

const (
	methodGetUserProfile = "GetUserProfile"

	errCtxCountingNotes = "counting notes"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo repositories.UserRepository
	notes    svc.OwnedNotes
}

// NewUserUseCase создает сервис профиля пользователя.
func NewUserUseCase(userRepo repositories.UserRepository, notes svc.OwnedNotes) api.UserUseCase {
	return &UserUseCaseImpl{userRepo: userRepo, notes: notes}
}

// GetUserProfile возвращает пользователя и число его заметок.
func (u *UserUseCaseImpl) GetUserProfile(ctx context.Context, userID string) (*services.Profile, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetUserProfile), zap.String("userID", userID))

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	count, err := u.notes.CountByOwner(ctx, userID)
	if err != nil {
		log.Error(ctx, "failed to count notes", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCountingNotes, err)
	}

	return &services.Profile{User: user, NoteCount: count}, nil
}
