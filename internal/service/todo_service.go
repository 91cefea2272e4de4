package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasknotes/internal/model"
	"tasknotes/internal/repository"
	"tasknotes/internal/timeutil"
)

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Title        string
	Description  *string
	StartDate    *time.Time
	DueDate      *time.Time
	AttributeIDs []string
}

// TodoUpdate carries a partial update; nil fields are left unchanged.
type TodoUpdate struct {
	Title        *string
	Description  *string
	Completed    *bool
	StartDate    *time.Time
	ClearStart   bool
	DueDate      *time.Time
	ClearDue     bool
	AttributeIDs *[]string
}

// TodoView is a todo together with its attributes and derived deadline state.
type TodoView struct {
	model.Todo
	Attributes []model.Attribute  `json:"attributes"`
	DueStatus  timeutil.DueStatus `json:"due_status"`
	Remaining  string             `json:"remaining"`
}

// TodoService wraps todo-related business logic.
type TodoService struct {
	todos *repository.TodoRepository
	attrs *repository.AttributeRepository
}

func NewTodoService(todos *repository.TodoRepository, attrs *repository.AttributeRepository) *TodoService {
	return &TodoService{todos: todos, attrs: attrs}
}

func (s *TodoService) Create(ctx context.Context, userID string, input TodoInput) (*TodoView, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	todo := &model.Todo{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}

	if len(input.AttributeIDs) > 0 {
		if err := s.attrs.SetTodoAttributes(ctx, todo.ID, input.AttributeIDs); err != nil {
			return nil, err
		}
	}

	return s.view(ctx, todo, time.Now())
}

func (s *TodoService) List(ctx context.Context, userID string, filter repository.TodoFilter) ([]TodoView, error) {
	todos, err := s.todos.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(todos))
	for i, todo := range todos {
		ids[i] = todo.ID
	}
	attrsByTodo, err := s.attrs.MapByTodos(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]TodoView, len(todos))
	for i, todo := range todos {
		views[i] = TodoView{
			Todo:       todo,
			Attributes: attrsByTodo[todo.ID],
			DueStatus:  timeutil.StatusAt(todo.DueDate, now),
			Remaining:  timeutil.FormatRemaining(todo.DueDate, now),
		}
	}
	return views, nil
}

func (s *TodoService) Get(ctx context.Context, userID, todoID string) (*TodoView, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, todo, time.Now())
}

func (s *TodoService) Update(ctx context.Context, userID, todoID string, update TodoUpdate) (*TodoView, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, fmt.Errorf("title is required")
		}
		todo.Title = *update.Title
	}
	if update.Description != nil {
		todo.Description = update.Description
	}
	if update.Completed != nil {
		todo.Completed = *update.Completed
	}
	if update.ClearStart {
		todo.StartDate = nil
	} else if update.StartDate != nil {
		todo.StartDate = update.StartDate
	}
	if update.ClearDue {
		todo.DueDate = nil
	} else if update.DueDate != nil {
		todo.DueDate = update.DueDate
	}

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}

	if update.AttributeIDs != nil {
		if err := s.attrs.SetTodoAttributes(ctx, todo.ID, *update.AttributeIDs); err != nil {
			return nil, err
		}
	}

	return s.view(ctx, todo, time.Now())
}

// ToggleComplete flips the completion flag.
func (s *TodoService) ToggleComplete(ctx context.Context, userID, todoID string) (*TodoView, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}
	todo.Completed = !todo.Completed
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	return s.view(ctx, todo, time.Now())
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	return s.todos.Delete(ctx, userID, todoID)
}

func (s *TodoService) view(ctx context.Context, todo *model.Todo, now time.Time) (*TodoView, error) {
	attrs, err := s.attrs.ListByTodo(ctx, todo.ID)
	if err != nil {
		return nil, err
	}
	return &TodoView{
		Todo:       *todo,
		Attributes: attrs,
		DueStatus:  timeutil.StatusAt(todo.DueDate, now),
		Remaining:  timeutil.FormatRemaining(todo.DueDate, now),
	}, nil
}
