package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"tasknotes/internal/model"
	"tasknotes/internal/repository"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// AttributeService wraps attribute (tag) business logic.
type AttributeService struct {
	attrs *repository.AttributeRepository
}

func NewAttributeService(attrs *repository.AttributeRepository) *AttributeService {
	return &AttributeService{attrs: attrs}
}

func (s *AttributeService) Create(ctx context.Context, userID, name, color string) (*model.Attribute, error) {
	if err := validateAttribute(name, color); err != nil {
		return nil, err
	}
	attr := &model.Attribute{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
		Color:  color,
	}
	if err := s.attrs.Create(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (s *AttributeService) List(ctx context.Context, userID string) ([]model.Attribute, error) {
	return s.attrs.ListByUser(ctx, userID)
}

func (s *AttributeService) Stats(ctx context.Context, userID string) ([]repository.AttributeStats, error) {
	return s.attrs.Stats(ctx, userID)
}

func (s *AttributeService) Update(ctx context.Context, userID, attrID string, name, color *string) (*model.Attribute, error) {
	attr, err := s.attrs.FindByID(ctx, userID, attrID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		attr.Name = *name
	}
	if color != nil {
		attr.Color = *color
	}
	if err := validateAttribute(attr.Name, attr.Color); err != nil {
		return nil, err
	}
	if err := s.attrs.Update(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (s *AttributeService) Delete(ctx context.Context, userID, attrID string) error {
	return s.attrs.Delete(ctx, userID, attrID)
}

func validateAttribute(name, color string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if !hexColor.MatchString(color) {
		return fmt.Errorf("color must be a hex value like #3B82F6")
	}
	return nil
}
