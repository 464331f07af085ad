package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/logger"
)

const noteColumns = `id, user_id, title, content, archived, created_at, updated_at`

const (
	queryCreateNote = `
        INSERT INTO notes (user_id, title, content, archived)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + noteColumns

	queryGetNote = `
        SELECT ` + noteColumns + `
        FROM notes
        WHERE id = $1 AND user_id = $2`

	queryListNotes = `
        SELECT ` + noteColumns + `
        FROM notes
        WHERE user_id = $1 AND archived = $2
        ORDER BY created_at DESC`

	queryUpdateNote = `
        UPDATE notes
        SET title = $3, content = $4, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + noteColumns

	querySetArchived = `
        UPDATE notes
        SET archived = $3, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + noteColumns

	queryDeleteNote = `
        DELETE FROM notes
        WHERE id = $1 AND user_id = $2`

	queryDeleteAllNotes = `
        DELETE FROM notes
        WHERE user_id = $1`

	queryCountNotes = `
        SELECT count(*)
        FROM notes
        WHERE user_id = $1`
)

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	pool PgxPoolInterface
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool PgxPoolInterface) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var note entities.Note
	if err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.Title,
		&note.Content,
		&note.Archived,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &note, nil
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return false
		}
	}
	return true
}

// Create сохраняет новую заметку в БД.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.String("ownerID", note.OwnerID))

	created, err := scanNote(r.pool.QueryRow(ctx, queryCreateNote, note.OwnerID, note.Title, note.Content, note.Archived))
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", created.ID))
	return created, nil
}

// GetByID получает заметку по ID и владельцу.
func (r *NoteRepository) GetByID(ctx context.Context, noteID, ownerID string) (*entities.Note, error) {
	return r.queryOwned(ctx, "NoteRepository.GetByID", queryGetNote, noteID, ownerID)
}

// Update заменяет заголовок и содержимое заметки владельца.
func (r *NoteRepository) Update(ctx context.Context, noteID, ownerID, title, content string) (*entities.Note, error) {
	return r.queryOwned(ctx, "NoteRepository.Update", queryUpdateNote, noteID, ownerID, title, content)
}

// SetArchived меняет флаг архива заметки владельца.
func (r *NoteRepository) SetArchived(ctx context.Context, noteID, ownerID string, archived bool) (*entities.Note, error) {
	return r.queryOwned(ctx, "NoteRepository.SetArchived", querySetArchived, noteID, ownerID, archived)
}

// queryOwned выполняет запрос с фильтром (id, user_id) и читает одну заметку.
func (r *NoteRepository) queryOwned(ctx context.Context, method, query, noteID, ownerID string, args ...any) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", method))

	if !validIDs(noteID, ownerID) {
		return nil, entities.ErrNoteNotFound
	}

	note, err := scanNote(r.pool.QueryRow(ctx, query, append([]any{noteID, ownerID}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.String("noteID", noteID), zap.String("ownerID", ownerID))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "note query failed", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return note, nil
}

// ListByOwner получает заметки владельца с заданным флагом архива.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string, archived bool) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListByOwner"))
	log.Debug(ctx, "listing notes", zap.String("ownerID", ownerID), zap.Bool("archived", archived))

	if !validIDs(ownerID) {
		return []*entities.Note{}, nil
	}

	rows, err := r.pool.Query(ctx, queryListNotes, ownerID, archived)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating notes", zap.Error(err))
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// Delete удаляет заметку владельца.
func (r *NoteRepository) Delete(ctx context.Context, noteID, ownerID string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))

	if !validIDs(noteID, ownerID) {
		return entities.ErrNoteNotFound
	}

	result, err := r.pool.Exec(ctx, queryDeleteNote, noteID, ownerID)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found or not owned", zap.String("noteID", noteID))
		return entities.ErrNoteNotFound
	}
	return nil
}

// DeleteAllByOwner удаляет все заметки владельца и возвращает их число.
func (r *NoteRepository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	if !validIDs(ownerID) {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, queryDeleteAllNotes, ownerID)
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to delete owner notes",
			zap.String("method", "NoteRepository.DeleteAllByOwner"), zap.Error(err))
		return 0, fmt.Errorf("failed to delete owner notes: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountByOwner возвращает число заметок владельца.
func (r *NoteRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	if !validIDs(ownerID) {
		return 0, nil
	}

	var count int64
	if err := r.pool.QueryRow(ctx, queryCountNotes, ownerID).Scan(&count); err != nil {
		logger.Log(ctx).Error(ctx, "failed to count notes",
			zap.String("method", "NoteRepository.CountByOwner"), zap.Error(err))
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}
