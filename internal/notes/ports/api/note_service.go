// Package api описывает входные порты сервиса заметок.
package api

import (
	"context"

	"gonotes/internal/notes/domain/entities"
)

// NoteUseCase определяет операции над заметками от имени владельца ownerID.
type NoteUseCase interface {
	List(ctx context.Context, ownerID string, archived bool) ([]*entities.Note, error)

	Get(ctx context.Context, ownerID, noteID string) (*entities.Note, error)

	Create(ctx context.Context, ownerID, title, content string) (*entities.Note, error)

	Update(ctx context.Context, ownerID, noteID, title, content string) (*entities.Note, error)

	SetArchived(ctx context.Context, ownerID, noteID string, archived bool) (*entities.Note, error)

	Delete(ctx context.Context, ownerID, noteID string) error
}
