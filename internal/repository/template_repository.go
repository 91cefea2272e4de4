package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasknotes/internal/model"
)

// TemplateRepository handles CRUD for recurring templates.
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *model.RecurringTemplate) error {
	if err := r.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]model.RecurringTemplate, error) {
	var templates []model.RecurringTemplate
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, userID, templateID string) (*model.RecurringTemplate, error) {
	var tpl model.RecurringTemplate
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, templateID).First(&tpl).Error
	switch {
	case err == nil:
		return &tpl, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find template: %w", err)
	}
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *model.RecurringTemplate) error {
	if err := r.db.WithContext(ctx).Save(tpl).Error; err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) SetEnabled(ctx context.Context, userID, templateID string, enabled bool) error {
	res := r.db.WithContext(ctx).Model(&model.RecurringTemplate{}).
		Where("user_id = ? AND id = ?", userID, templateID).
		Update("enabled", enabled)
	if res.Error != nil {
		return fmt.Errorf("toggle template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template and its attribute assignments. Todos generated
// from the template survive as historical records with the back-reference
// cleared.
func (r *TemplateRepository) Delete(ctx context.Context, userID, templateID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, templateID).Delete(&model.RecurringTemplate{})
		if res.Error != nil {
			return fmt.Errorf("delete template: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("template_id = ?", templateID).Delete(&model.TemplateAttributeAssignment{}).Error; err != nil {
			return fmt.Errorf("delete template assignments: %w", err)
		}
		if err := tx.Model(&model.Todo{}).
			Where("recurring_template_id = ?", templateID).
			Updates(map[string]interface{}{"recurring_template_id": nil, "scheduled_on": nil}).Error; err != nil {
			return fmt.Errorf("detach generated todos: %w", err)
		}
		return nil
	})
}
