// Package mongo содержит хранилище заметок на MongoDB.
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

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/pkg/logger"
)

// NotesCollection - имя коллекции заметок.
const NotesCollection = "notes"

const (
	fieldID        = "_id"
	fieldOwner     = "owner"
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldArchived  = "archived"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

type noteDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Owner     primitive.ObjectID `bson:"owner"`
	Archived  bool               `bson:"archived"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *noteDocument) toEntity() *entities.Note {
	return &entities.Note{
		ID:        d.ID.Hex(),
		OwnerID:   d.Owner.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Archived:  d.Archived,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// NoteRepository реализует repositories.NoteRepository для MongoDB.
type NoteRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewNoteRepository создает репозиторий заметок поверх базы db.
func NewNoteRepository(db *mongo.Database) repositories.NoteRepository {
	return &NoteRepository{coll: db.Collection(NotesCollection), now: time.Now}
}

// EnsureIndexes создает индекс для выборки заметок владельца по флагу архива.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(NotesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: fieldOwner, Value: 1}, {Key: fieldArchived, Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("error creating notes indexes: %w", err)
	}
	return nil
}

func (r *NoteRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// ownedFilter строит фильтр (id, владелец). ok == false, если один из ID не ObjectID.
func ownedFilter(noteID, ownerID string) (bson.M, bool) {
	id, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	return bson.M{fieldID: id, fieldOwner: owner}, true
}

// Create сохраняет новую заметку.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))

	owner, err := primitive.ObjectIDFromHex(note.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: invalid owner id %q: %w", note.OwnerID, err)
	}

	now := r.timestamp()
	doc := noteDocument{
		ID:        primitive.NewObjectID(),
		Title:     note.Title,
		Content:   note.Content,
		Owner:     owner,
		Archived:  note.Archived,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", doc.ID.Hex()))
	return doc.toEntity(), nil
}

// GetByID получает заметку по ID и владельцу.
func (r *NoteRepository) GetByID(ctx context.Context, noteID, ownerID string) (*entities.Note, error) {
	filter, ok := ownedFilter(noteID, ownerID)
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	return r.decodeOwned(ctx, "NoteRepository.GetByID", r.coll.FindOne(ctx, filter))
}

// Update заменяет заголовок и содержимое заметки владельца.
func (r *NoteRepository) Update(ctx context.Context, noteID, ownerID, title, content string) (*entities.Note, error) {
	return r.updateOwned(ctx, "NoteRepository.Update", noteID, ownerID, bson.M{
		fieldTitle:     title,
		fieldContent:   content,
		fieldUpdatedAt: r.timestamp(),
	})
}

// SetArchived меняет флаг архива заметки владельца.
func (r *NoteRepository) SetArchived(ctx context.Context, noteID, ownerID string, archived bool) (*entities.Note, error) {
	return r.updateOwned(ctx, "NoteRepository.SetArchived", noteID, ownerID, bson.M{
		fieldArchived:  archived,
		fieldUpdatedAt: r.timestamp(),
	})
}

func (r *NoteRepository) updateOwned(ctx context.Context, method, noteID, ownerID string, set bson.M) (*entities.Note, error) {
	filter, ok := ownedFilter(noteID, ownerID)
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOwned(ctx, method, r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts))
}

func (r *NoteRepository) decodeOwned(ctx context.Context, method string, result *mongo.SingleResult) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", method))

	var doc noteDocument
	if err := result.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Debug(ctx, "note not found")
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "note query failed", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return doc.toEntity(), nil
}

// ListByOwner получает заметки владельца с заданным флагом архива.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string, archived bool) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListByOwner"))

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []*entities.Note{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{fieldOwner: owner, fieldArchived: archived}, opts)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error(ctx, "failed to read notes", zap.Error(err))
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	notes := make([]*entities.Note, 0, len(docs))
	for i := range docs {
		notes = append(notes, docs[i].toEntity())
	}
	return notes, nil
}

// Delete удаляет заметку владельца одной операцией findAndModify.
func (r *NoteRepository) Delete(ctx context.Context, noteID, ownerID string) error {
	filter, ok := ownedFilter(noteID, ownerID)
	if !ok {
		return entities.ErrNoteNotFound
	}
	_, err := r.decodeOwned(ctx, "NoteRepository.Delete", r.coll.FindOneAndDelete(ctx, filter))
	return err
}

// DeleteAllByOwner удаляет все заметки владельца и возвращает их число.
func (r *NoteRepository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, nil
	}

	result, err := r.coll.DeleteMany(ctx, bson.M{fieldOwner: owner})
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to delete owner notes",
			zap.String("method", "NoteRepository.DeleteAllByOwner"), zap.Error(err))
		return 0, fmt.Errorf("failed to delete owner notes: %w", err)
	}
	return result.DeletedCount, nil
}

// CountByOwner возвращает число заметок владельца.
func (r *NoteRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{fieldOwner: owner})
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to count notes",
			zap.String("method", "NoteRepository.CountByOwner"), zap.Error(err))
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}
