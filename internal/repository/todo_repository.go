package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasknotes/internal/model"
)

// AttributeOperator controls how a multi-attribute filter combines.
type AttributeOperator string

const (
	AttributeAnd AttributeOperator = "AND" // todo must carry every selected attribute
	AttributeOr  AttributeOperator = "OR"  // todo must carry at least one
)

// TodoFilter narrows a todo listing.
type TodoFilter struct {
	// Completed filters by completion state when non-nil.
	Completed *bool
	// AttributeIDs filters by attribute assignments when non-empty.
	AttributeIDs []string
	Operator     AttributeOperator
}

// TodoRepository handles CRUD for todos.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) List(ctx context.Context, userID string, filter TodoFilter) ([]model.Todo, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}

	if len(filter.AttributeIDs) > 0 {
		sub := r.db.Model(&model.TodoAttributeAssignment{}).
			Select("todo_id").
			Where("attribute_id IN ?", filter.AttributeIDs)
		if filter.Operator == AttributeAnd {
			sub = sub.Group("todo_id").
				Having("COUNT(DISTINCT attribute_id) = ?", len(filter.AttributeIDs))
		}
		q = q.Where("id IN (?)", sub)
	}

	var todos []model.Todo
	if err := q.Order("completed ASC, due_date IS NULL, due_date ASC, created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, todoID).First(&todo).Error
	switch {
	case err == nil:
		return &todo, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find todo: %w", err)
	}
}

func (r *TodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	if err := r.db.WithContext(ctx).Save(todo).Error; err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// Delete removes a todo together with its attribute assignments.
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, todoID).Delete(&model.Todo{})
		if res.Error != nil {
			return fmt.Errorf("delete todo: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("todo_id = ?", todoID).Delete(&model.TodoAttributeAssignment{}).Error; err != nil {
			return fmt.Errorf("delete todo assignments: %w", err)
		}
		return nil
	})
}
