package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasknotes/internal/model"
)

// AttributeStats is an attribute plus the number of todos carrying it.
type AttributeStats struct {
	model.Attribute
	UsageCount int64 `json:"usage_count"`
}

// AttributeRepository manages attributes and their assignments.
type AttributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

func (r *AttributeRepository) Create(ctx context.Context, attr *model.Attribute) error {
	if err := r.db.WithContext(ctx).Create(attr).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("attribute %q already exists", attr.Name)
		}
		return fmt.Errorf("create attribute: %w", err)
	}
	return nil
}

func (r *AttributeRepository) ListByUser(ctx context.Context, userID string) ([]model.Attribute, error) {
	var attrs []model.Attribute
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("name ASC").
		Find(&attrs).Error; err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	return attrs, nil
}

func (r *AttributeRepository) FindByID(ctx context.Context, userID, attrID string) (*model.Attribute, error) {
	var attr model.Attribute
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, attrID).First(&attr).Error
	switch {
	case err == nil:
		return &attr, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find attribute: %w", err)
	}
}

func (r *AttributeRepository) Update(ctx context.Context, attr *model.Attribute) error {
	if err := r.db.WithContext(ctx).Save(attr).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("attribute %q already exists", attr.Name)
		}
		return fmt.Errorf("update attribute: %w", err)
	}
	return nil
}

// Delete removes an attribute and every assignment that references it.
func (r *AttributeRepository) Delete(ctx context.Context, userID, attrID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, attrID).Delete(&model.Attribute{})
		if res.Error != nil {
			return fmt.Errorf("delete attribute: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("attribute_id = ?", attrID).Delete(&model.TodoAttributeAssignment{}).Error; err != nil {
			return fmt.Errorf("delete todo assignments: %w", err)
		}
		if err := tx.Where("attribute_id = ?", attrID).Delete(&model.TemplateAttributeAssignment{}).Error; err != nil {
			return fmt.Errorf("delete template assignments: %w", err)
		}
		return nil
	})
}

// Stats returns each attribute of the user with its todo usage count.
func (r *AttributeRepository) Stats(ctx context.Context, userID string) ([]AttributeStats, error) {
	var stats []AttributeStats
	err := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Select("attributes.*, COUNT(todo_attribute_assignments.id) AS usage_count").
		Joins("LEFT JOIN todo_attribute_assignments ON todo_attribute_assignments.attribute_id = attributes.id").
		Where("attributes.user_id = ?", userID).
		Group("attributes.id").
		Order("attributes.name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("attribute stats: %w", err)
	}
	return stats, nil
}

// ListByTodo returns the attributes attached to a todo.
func (r *AttributeRepository) ListByTodo(ctx context.Context, todoID string) ([]model.Attribute, error) {
	var attrs []model.Attribute
	err := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Joins("JOIN todo_attribute_assignments ON todo_attribute_assignments.attribute_id = attributes.id").
		Where("todo_attribute_assignments.todo_id = ?", todoID).
		Order("attributes.name ASC").
		Find(&attrs).Error
	if err != nil {
		return nil, fmt.Errorf("list todo attributes: %w", err)
	}
	return attrs, nil
}

// MapByTodos returns the attributes of each of the given todos keyed by todo
// ID. Todos without attributes are absent from the map.
func (r *AttributeRepository) MapByTodos(ctx context.Context, todoIDs []string) (map[string][]model.Attribute, error) {
	result := make(map[string][]model.Attribute)
	if len(todoIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		model.Attribute
		TodoID string
	}
	err := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Select("attributes.*, todo_attribute_assignments.todo_id AS todo_id").
		Joins("JOIN todo_attribute_assignments ON todo_attribute_assignments.attribute_id = attributes.id").
		Where("todo_attribute_assignments.todo_id IN ?", todoIDs).
		Order("attributes.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("map todo attributes: %w", err)
	}
	for _, row := range rows {
		result[row.TodoID] = append(result[row.TodoID], row.Attribute)
	}
	return result, nil
}

// ListByTemplate returns the attributes attached to a recurring template.
func (r *AttributeRepository) ListByTemplate(ctx context.Context, templateID string) ([]model.Attribute, error) {
	var attrs []model.Attribute
	err := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Joins("JOIN template_attribute_assignments ON template_attribute_assignments.attribute_id = attributes.id").
		Where("template_attribute_assignments.template_id = ?", templateID).
		Order("attributes.name ASC").
		Find(&attrs).Error
	if err != nil {
		return nil, fmt.Errorf("list template attributes: %w", err)
	}
	return attrs, nil
}

// SetTodoAttributes replaces a todo's attribute set.
func (r *AttributeRepository) SetTodoAttributes(ctx context.Context, todoID string, attributeIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", todoID).Delete(&model.TodoAttributeAssignment{}).Error; err != nil {
			return fmt.Errorf("clear todo attributes: %w", err)
		}
		for _, attrID := range attributeIDs {
			a := model.TodoAttributeAssignment{
				ID:          uuid.New().String(),
				TodoID:      todoID,
				AttributeID: attrID,
				CreatedAt:   time.Now(),
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("assign attribute %s: %w", attrID, err)
			}
		}
		return nil
	})
}

// SetTemplateAttributes replaces a template's attribute set.
func (r *AttributeRepository) SetTemplateAttributes(ctx context.Context, templateID string, attributeIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&model.TemplateAttributeAssignment{}).Error; err != nil {
			return fmt.Errorf("clear template attributes: %w", err)
		}
		for _, attrID := range attributeIDs {
			a := model.TemplateAttributeAssignment{
				ID:          uuid.New().String(),
				TemplateID:  templateID,
				AttributeID: attrID,
				CreatedAt:   time.Now(),
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("assign attribute %s: %w", attrID, err)
			}
		}
		return nil
	})
}

// SeedDefaults creates the starter attribute set for a new user. Existing
// names are left alone.
func (r *AttributeRepository) SeedDefaults(ctx context.Context, userID string) error {
	defaults := []model.Attribute{
		{Name: "urgent", Color: "#EF4444"},
		{Name: "important", Color: "#F59E0B"},
		{Name: "long-term", Color: "#10B981"},
		{Name: "work", Color: "#3B82F6"},
		{Name: "personal", Color: "#8B5CF6"},
	}
	for _, attr := range defaults {
		attr.ID = uuid.New().String()
		attr.UserID = userID
		if err := r.db.WithContext(ctx).Create(&attr).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return fmt.Errorf("seed attribute %q: %w", attr.Name, err)
		}
	}
	return nil
}
