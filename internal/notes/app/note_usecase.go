// Package app реализует бизнес-логику сервиса заметок.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/api"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/logger"
)

// ErrUnauthorized возвращается, если вызов сделан без владельца.
var ErrUnauthorized = errors.New("unauthorized access")

const (
	methodList        = "List"
	methodGet         = "Get"
	methodCreate      = "Create"
	methodUpdate      = "Update"
	methodSetArchived = "SetArchived"
	methodDelete      = "Delete"

	msgNoteCreated  = "note created"
	msgNoteUpdated  = "note updated"
	msgNoteArchived = "note archive flag changed"
	msgNoteDeleted  = "note deleted"
	msgNoteMissing  = "note not found for owner"
	msgInvalidNote  = "note input rejected"
	msgErrStorage   = "note storage failure"

	errCtxValidating = "validating note"
	errCtxListing    = "listing notes"
	errCtxGetting    = "getting note"
	errCtxCreating   = "creating note"
	errCtxUpdating   = "updating note"
	errCtxArchiving  = "changing archive flag"
	errCtxDeleting   = "deleting note"
)

// NoteUseCaseImpl реализует api.NoteUseCase.
type NoteUseCaseImpl struct {
	noteRepo repositories.NoteRepository
}

// NewNoteUseCase создает новый экземпляр NoteUseCase.
func NewNoteUseCase(noteRepo repositories.NoteRepository) api.NoteUseCase {
	return &NoteUseCaseImpl{noteRepo: noteRepo}
}

// List возвращает заметки владельца с заданным флагом архива.
func (uc *NoteUseCaseImpl) List(ctx context.Context, ownerID string, archived bool) ([]*entities.Note, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	notes, err := uc.noteRepo.ListByOwner(ctx, ownerID, archived)
	if err != nil {
		logger.Log(ctx).Error(ctx, msgErrStorage, zap.String("method", methodList), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListing, err)
	}
	return notes, nil
}

// Get возвращает заметку владельца.
func (uc *NoteUseCaseImpl) Get(ctx context.Context, ownerID, noteID string) (*entities.Note, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	note, err := uc.noteRepo.GetByID(ctx, noteID, ownerID)
	if err != nil {
		return nil, uc.wrap(ctx, methodGet, errCtxGetting, noteID, err)
	}
	return note, nil
}

// Create создает заметку владельца.
func (uc *NoteUseCaseImpl) Create(ctx context.Context, ownerID, title, content string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreate), zap.String("ownerID", ownerID))

	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	note, err := entities.NewNote(ownerID, title, content)
	if err != nil {
		log.Debug(ctx, msgInvalidNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidating, err)
	}

	created, err := uc.noteRepo.Create(ctx, note)
	if err != nil {
		log.Error(ctx, msgErrStorage, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreating, err)
	}

	log.Info(ctx, msgNoteCreated, zap.String("noteID", created.ID))
	return created, nil
}

// Update заменяет заголовок и содержимое заметки.
func (uc *NoteUseCaseImpl) Update(ctx context.Context, ownerID, noteID, title, content string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdate), zap.String("ownerID", ownerID))

	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	title = strings.TrimSpace(title)
	if err := entities.Validate(title, content); err != nil {
		log.Debug(ctx, msgInvalidNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidating, err)
	}

	note, err := uc.noteRepo.Update(ctx, noteID, ownerID, title, content)
	if err != nil {
		return nil, uc.wrap(ctx, methodUpdate, errCtxUpdating, noteID, err)
	}

	log.Info(ctx, msgNoteUpdated, zap.String("noteID", note.ID))
	return note, nil
}

// SetArchived переносит заметку в архив или возвращает из него.
func (uc *NoteUseCaseImpl) SetArchived(ctx context.Context, ownerID, noteID string, archived bool) (*entities.Note, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	note, err := uc.noteRepo.SetArchived(ctx, noteID, ownerID, archived)
	if err != nil {
		return nil, uc.wrap(ctx, methodSetArchived, errCtxArchiving, noteID, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteArchived,
		zap.String("method", methodSetArchived), zap.String("noteID", note.ID), zap.Bool("archived", archived))
	return note, nil
}

// Delete удаляет заметку владельца.
func (uc *NoteUseCaseImpl) Delete(ctx context.Context, ownerID, noteID string) error {
	if ownerID == "" {
		return ErrUnauthorized
	}

	if err := uc.noteRepo.Delete(ctx, noteID, ownerID); err != nil {
		return uc.wrap(ctx, methodDelete, errCtxDeleting, noteID, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteDeleted, zap.String("method", methodDelete), zap.String("noteID", noteID))
	return nil
}

func (uc *NoteUseCaseImpl) wrap(ctx context.Context, method, errCtx, noteID string, err error) error {
	log := logger.Log(ctx).With(zap.String("method", method), zap.String("noteID", noteID))
	if errors.Is(err, entities.ErrNoteNotFound) {
		log.Debug(ctx, msgNoteMissing)
	} else {
		log.Error(ctx, msgErrStorage, zap.Error(err))
	}
	return fmt.Errorf("%s: %w", errCtx, err)
}
