// Package repositories описывает порты хранения заметок.
package repositories

import (
	"context"

	"gonotes/internal/notes/domain/entities"
)

// NoteRepository определяет интерфейс для работы с репозиторием заметок.
// Все операции над конкретной заметкой фильтруют по паре (id, владелец) одним запросом.
// Чужая, отсутствующая или некорректная по формату заметка дает entities.ErrNoteNotFound.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)

	GetByID(ctx context.Context, noteID, ownerID string) (*entities.Note, error)

	ListByOwner(ctx context.Context, ownerID string, archived bool) ([]*entities.Note, error)

	Update(ctx context.Context, noteID, ownerID, title, content string) (*entities.Note, error)

	SetArchived(ctx context.Context, noteID, ownerID string, archived bool) (*entities.Note, error)

	Delete(ctx context.Context, noteID, ownerID string) error

	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)

	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}
