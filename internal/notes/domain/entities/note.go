// Package entities определяет сущности домена заметок.
package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation - корень ошибок ввода заметки.
var ErrValidation = errors.New("validation error")

// Ошибки домена заметок.
var (
	ErrEmptyTitle   = fmt.Errorf("%w: title is required", ErrValidation)
	ErrEmptyContent = fmt.Errorf("%w: content is required", ErrValidation)
	ErrNoteNotFound = errors.New("note not found")
)

// Note представляет собой заметку пользователя.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNote создает неархивную заметку владельца ownerID.
func NewNote(ownerID, title, content string) (*Note, error) {
	title = strings.TrimSpace(title)
	if err := Validate(title, content); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Note{
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate проверяет обязательные поля. Строка из одних пробелов считается пустой.
func Validate(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return nil
}
