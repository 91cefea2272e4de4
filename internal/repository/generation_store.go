package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasknotes/internal/model"
	"tasknotes/internal/recurrence"
	"tasknotes/internal/timeutil"
)

// GenerationStore implements recurrence.Store on top of gorm. It is the only
// persistence surface the materialization engine sees.
type GenerationStore struct {
	db *gorm.DB
}

func NewGenerationStore(db *gorm.DB) *GenerationStore {
	return &GenerationStore{db: db}
}

var _ recurrence.Store = (*GenerationStore)(nil)

// ListEnabledTemplates returns templates with enabled=true whose end date is
// absent or on/after asOf.
func (s *GenerationStore) ListEnabledTemplates(ctx context.Context, asOf time.Time) ([]model.RecurringTemplate, error) {
	var templates []model.RecurringTemplate
	if err := s.db.WithContext(ctx).
		Where("enabled = ?", true).
		Where("end_date IS NULL OR end_date >= ?", timeutil.StartOfDay(asOf)).
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list enabled templates: %w", err)
	}
	return templates, nil
}

func (s *GenerationStore) FindInstanceByTemplateAndDateRange(ctx context.Context, templateID string, startOfDay, endOfDay time.Time) (*model.Todo, error) {
	var todo model.Todo
	err := s.db.WithContext(ctx).
		Where("recurring_template_id = ?", templateID).
		Where("start_date BETWEEN ? AND ?", startOfDay, endOfDay).
		First(&todo).Error
	switch {
	case err == nil:
		return &todo, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find instance: %w", err)
	}
}

// InsertInstance creates a generated todo. A unique-constraint hit on
// (template, scheduled date) is translated to ErrDuplicateInstance so the
// engine can treat a lost race as a no-op.
func (s *GenerationStore) InsertInstance(ctx context.Context, todo *model.Todo) error {
	if err := s.db.WithContext(ctx).Create(todo).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return recurrence.ErrDuplicateInstance
		}
		return fmt.Errorf("insert instance: %w", err)
	}
	return nil
}

func (s *GenerationStore) ListTemplateAttributeIDs(ctx context.Context, templateID string) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&model.TemplateAttributeAssignment{}).
		Where("template_id = ?", templateID).
		Pluck("attribute_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list template attribute ids: %w", err)
	}
	return ids, nil
}

func (s *GenerationStore) InsertTagAssignments(ctx context.Context, todoID string, attributeIDs []string) error {
	assignments := make([]model.TodoAttributeAssignment, 0, len(attributeIDs))
	now := time.Now()
	for _, attrID := range attributeIDs {
		assignments = append(assignments, model.TodoAttributeAssignment{
			ID:          uuid.New().String(),
			TodoID:      todoID,
			AttributeID: attrID,
			CreatedAt:   now,
		})
	}
	if len(assignments) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&assignments).Error; err != nil {
		return fmt.Errorf("insert tag assignments: %w", err)
	}
	return nil
}

func (s *GenerationStore) UpdateTemplateWatermark(ctx context.Context, templateID string, date time.Time) error {
	if err := s.db.WithContext(ctx).Model(&model.RecurringTemplate{}).
		Where("id = ?", templateID).
		Update("last_generated_date", timeutil.StartOfDay(date)).Error; err != nil {
		return fmt.Errorf("update watermark: %w", err)
	}
	return nil
}
