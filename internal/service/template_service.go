package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasknotes/internal/model"
	"tasknotes/internal/recurrence"
	"tasknotes/internal/repository"
	"tasknotes/internal/timeutil"
)

// TemplateInput represents data required to create a recurring template.
type TemplateInput struct {
	Title         string
	Description   *string
	Frequency     string
	IntervalValue int
	Weekdays      []int
	StartTime     *string
	EndDate       *time.Time
	Enabled       *bool
	AttributeIDs  []string
}

// TemplateUpdate carries a partial update; nil fields are left unchanged.
type TemplateUpdate struct {
	Title         *string
	Description   *string
	Frequency     *string
	IntervalValue *int
	Weekdays      *[]int
	StartTime     *string
	ClearStart    bool
	EndDate       *time.Time
	ClearEnd      bool
	Enabled       *bool
	AttributeIDs  *[]string
}

// TemplateView is a template with its attributes and derived status.
type TemplateView struct {
	model.RecurringTemplate
	Attributes []model.Attribute    `json:"attributes"`
	Status     model.TemplateStatus `json:"status"`
}

// TemplateService wraps recurring-template business logic.
type TemplateService struct {
	templates *repository.TemplateRepository
	attrs     *repository.AttributeRepository
}

func NewTemplateService(templates *repository.TemplateRepository, attrs *repository.AttributeRepository) *TemplateService {
	return &TemplateService{templates: templates, attrs: attrs}
}

func (s *TemplateService) Create(ctx context.Context, userID string, input TemplateInput) (*TemplateView, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	tpl := &model.RecurringTemplate{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         input.Title,
		Description:   input.Description,
		Frequency:     input.Frequency,
		IntervalValue: input.IntervalValue,
		Weekdays:      input.Weekdays,
		StartTime:     input.StartTime,
		Enabled:       true,
	}
	if input.EndDate != nil {
		d := timeutil.StartOfDay(*input.EndDate)
		tpl.EndDate = &d
	}
	if input.Enabled != nil {
		tpl.Enabled = *input.Enabled
	}

	// Reject malformed rules at the edge instead of skipping them at
	// generation time.
	if _, err := recurrence.RuleFromTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}
	if len(input.AttributeIDs) > 0 {
		if err := s.attrs.SetTemplateAttributes(ctx, tpl.ID, input.AttributeIDs); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, tpl)
}

func (s *TemplateService) List(ctx context.Context, userID string) ([]TemplateView, error) {
	templates, err := s.templates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]TemplateView, 0, len(templates))
	for i := range templates {
		view, err := s.view(ctx, &templates[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *TemplateService) Get(ctx context.Context, userID, templateID string) (*TemplateView, error) {
	tpl, err := s.templates.FindByID(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, tpl)
}

func (s *TemplateService) Update(ctx context.Context, userID, templateID string, update TemplateUpdate) (*TemplateView, error) {
	tpl, err := s.templates.FindByID(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, fmt.Errorf("title is required")
		}
		tpl.Title = *update.Title
	}
	if update.Description != nil {
		tpl.Description = update.Description
	}
	if update.Frequency != nil {
		tpl.Frequency = *update.Frequency
	}
	if update.IntervalValue != nil {
		tpl.IntervalValue = *update.IntervalValue
	}
	if update.Weekdays != nil {
		tpl.Weekdays = *update.Weekdays
	}
	if update.ClearStart {
		tpl.StartTime = nil
	} else if update.StartTime != nil {
		tpl.StartTime = update.StartTime
	}
	if update.ClearEnd {
		tpl.EndDate = nil
	} else if update.EndDate != nil {
		d := timeutil.StartOfDay(*update.EndDate)
		tpl.EndDate = &d
	}
	if update.Enabled != nil {
		tpl.Enabled = *update.Enabled
	}

	if _, err := recurrence.RuleFromTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}
	if update.AttributeIDs != nil {
		if err := s.attrs.SetTemplateAttributes(ctx, tpl.ID, *update.AttributeIDs); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, tpl)
}

// SetEnabled toggles generation for a template without touching the rule.
func (s *TemplateService) SetEnabled(ctx context.Context, userID, templateID string, enabled bool) error {
	return s.templates.SetEnabled(ctx, userID, templateID, enabled)
}

// Delete removes the template. Previously generated todos survive.
func (s *TemplateService) Delete(ctx context.Context, userID, templateID string) error {
	return s.templates.Delete(ctx, userID, templateID)
}

func (s *TemplateService) view(ctx context.Context, tpl *model.RecurringTemplate) (*TemplateView, error) {
	attrs, err := s.attrs.ListByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	return &TemplateView{
		RecurringTemplate: *tpl,
		Attributes:        attrs,
		Status:            tpl.StatusAt(timeutil.StartOfDay(time.Now())),
	}, nil
}
