// Package notes содержит HTTP обработчики заметок.
package notes

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/gateway/app/dto"
	"gonotes/internal/gateway/app/http/middleware"
	notesapp "gonotes/internal/notes/app"
	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/api"
	"gonotes/pkg/logger"
)

// Страницы.
const (
	ViewNotes         = "notes"
	ViewArchivedNotes = "archived-notes"
	ViewCreateNote    = "create-note"
	ViewNoteDetail    = "note-detail"
)

// Сообщения, которые видит пользователь.
const (
	MsgNoteCreated          = "Note created successfully"
	MsgNoteUpdated          = "Note updated successfully"
	MsgNoteDeleted          = "Note deleted successfully"
	MsgNoteArchived         = "Note archived successfully"
	MsgNoteUnarchived       = "Note unarchived successfully"
	MsgTitleContentRequired = "Title and content are required"
	MsgNoteNotFound         = "Note not found"
	MsgFetchNotesFailed     = "Server Error: Could not fetch notes."
	MsgFetchNoteFailed      = "Server Error: Could not fetch note."
)

// Действия над заметкой для текстов ответов.
const (
	actionCreate    = "create"
	actionEdit      = "edit"
	actionDelete    = "delete"
	actionArchive   = "archive"
	actionUnarchive = "unarchive"
)

// Константы для логирования.
const (
	LogHandlerCreate          = "notes handler: create"
	LogHandlerUpdate          = "notes handler: update"
	LogHandlerDelete          = "notes handler: delete"
	LogHandlerSetArchived     = "notes handler: set archived"
	ErrorFailedToServeRequest = "failed to serve request"
)

// Handler содержит HTTP обработчики заметок.
type Handler struct {
	notes api.NoteUseCase
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notes api.NoteUseCase) *Handler {
	return &Handler{notes: notes}
}

func ownerID(c fiber.Ctx) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID
	}
	return ""
}

// MsgNotOwned - ответ на обращение к отсутствующей или чужой заметке.
func MsgNotOwned(action string) string {
	return "Note not found or you're not authorized to " + action + " it"
}

// MsgServerError - ответ на сбой хранилища.
func MsgServerError(action string) string {
	return "Could not " + action + " note due to a server error."
}

// actionResult переводит ошибку сценария в JSON-ответ.
func actionResult(c fiber.Ctx, action string, err error) error {
	requestCtx := middleware.RequestContext(c)

	switch {
	case errors.Is(err, notesapp.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ActionResponse{Message: middleware.MsgUnauthorized})
	case errors.Is(err, entities.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ActionResponse{Message: MsgTitleContentRequired})
	case errors.Is(err, entities.ErrNoteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ActionResponse{Message: MsgNotOwned(action)})
	default:
		logger.Log(requestCtx).Error(requestCtx, ErrorFailedToServeRequest,
			zap.String("action", action), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ActionResponse{Message: MsgServerError(action)})
	}
}

func (h *Handler) list(c fiber.Ctx, archived bool, view string) error {
	requestCtx := middleware.RequestContext(c)

	notes, err := h.notes.List(requestCtx, ownerID(c), archived)
	if errors.Is(err, notesapp.ErrUnauthorized) {
		return c.Redirect().Status(fiber.StatusFound).To(middleware.LoginPath)
	}
	if err != nil {
		logger.Log(requestCtx).Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(MsgFetchNotesFailed)
	}

	return c.Render(view, fiber.Map{
		"Authenticated": true,
		"Notes":         notes,
		"CurrentPath":   c.Path(),
	})
}

// List показывает активные заметки.
func (h *Handler) List(c fiber.Ctx) error {
	return h.list(c, false, ViewNotes)
}

// ListArchived показывает архивные заметки.
func (h *Handler) ListArchived(c fiber.Ctx) error {
	return h.list(c, true, ViewArchivedNotes)
}

// CreatePage показывает форму новой заметки.
func (h *Handler) CreatePage(c fiber.Ctx) error {
	return c.Render(ViewCreateNote, fiber.Map{"Authenticated": true})
}

// Edit показывает заметку в форме редактирования.
func (h *Handler) Edit(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)

	note, err := h.notes.Get(requestCtx, ownerID(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, notesapp.ErrUnauthorized):
			return c.Redirect().Status(fiber.StatusFound).To(middleware.LoginPath)
		case errors.Is(err, entities.ErrNoteNotFound):
			return c.Status(fiber.StatusNotFound).SendString(MsgNoteNotFound)
		}
		logger.Log(requestCtx).Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(MsgFetchNoteFailed)
	}

	return c.Render(ViewNoteDetail, fiber.Map{"Authenticated": true, "Note": note})
}

// Content возвращает заметку в JSON.
func (h *Handler) Content(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)

	note, err := h.notes.Get(requestCtx, ownerID(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, notesapp.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ActionResponse{Message: middleware.MsgUnauthorized})
		case errors.Is(err, entities.ErrNoteNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": MsgNoteNotFound})
		}
		logger.Log(requestCtx).Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgFetchNoteFailed})
	}

	return c.JSON(dto.NewNoteResponse(note))
}

// Create создает заметку из JSON или формы.
func (h *Handler) Create(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Info(requestCtx, LogHandlerCreate)

	var req dto.NoteRequest
	if err := bindNote(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ActionResponse{Message: MsgTitleContentRequired})
	}

	note, err := h.notes.Create(requestCtx, ownerID(c), req.Title, req.Content)
	if err != nil {
		return actionResult(c, actionCreate, err)
	}

	return c.JSON(dto.ActionResponse{Success: true, Message: MsgNoteCreated, ID: note.ID})
}

// Update заменяет заголовок и содержимое заметки.
func (h *Handler) Update(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Info(requestCtx, LogHandlerUpdate)

	var req dto.NoteRequest
	if err := bindNote(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ActionResponse{Message: MsgTitleContentRequired})
	}

	if _, err := h.notes.Update(requestCtx, ownerID(c), c.Params("id"), req.Title, req.Content); err != nil {
		return actionResult(c, actionEdit, err)
	}

	return c.JSON(dto.ActionResponse{Success: true, Message: MsgNoteUpdated})
}

// Delete удаляет заметку.
func (h *Handler) Delete(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Info(requestCtx, LogHandlerDelete)

	if err := h.notes.Delete(requestCtx, ownerID(c), c.Params("id")); err != nil {
		return actionResult(c, actionDelete, err)
	}

	return c.JSON(dto.ActionResponse{Success: true, Message: MsgNoteDeleted})
}

// Archive переносит заметку в архив.
func (h *Handler) Archive(c fiber.Ctx) error {
	return h.setArchived(c, true)
}

// Unarchive возвращает заметку из архива.
func (h *Handler) Unarchive(c fiber.Ctx) error {
	return h.setArchived(c, false)
}

func (h *Handler) setArchived(c fiber.Ctx, archived bool) error {
	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Info(requestCtx, LogHandlerSetArchived, zap.Bool("archived", archived))

	action, msg := actionArchive, MsgNoteArchived
	if !archived {
		action, msg = actionUnarchive, MsgNoteUnarchived
	}

	if _, err := h.notes.SetArchived(requestCtx, ownerID(c), c.Params("id"), archived); err != nil {
		return actionResult(c, action, err)
	}

	return c.JSON(dto.ActionResponse{Success: true, Message: msg})
}

func bindNote(c fiber.Ctx, req *dto.NoteRequest) error {
	if err := c.Bind().Body(req); err != nil {
		return err
	}
	return dto.Validate(req)
}
