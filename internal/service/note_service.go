package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tasknotes/internal/model"
	"tasknotes/internal/repository"
)

// NoteService wraps note-related business logic.
type NoteService struct {
	notes *repository.NoteRepository
}

func NewNoteService(notes *repository.NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

func (s *NoteService) Create(ctx context.Context, userID, title, content string) (*model.Note, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	note := &model.Note{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, userID string) ([]model.Note, error) {
	return s.notes.ListByUser(ctx, userID)
}

func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*model.Note, error) {
	return s.notes.FindByID(ctx, userID, noteID)
}

func (s *NoteService) Update(ctx context.Context, userID, noteID string, title, content *string) (*model.Note, error) {
	note, err := s.notes.FindByID(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		if *title == "" {
			return nil, fmt.Errorf("title is required")
		}
		note.Title = *title
	}
	if content != nil {
		note.Content = *content
	}
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	return s.notes.Delete(ctx, userID, noteID)
}
