package recurrence

import (
	"context"
	"sync"
	"time"

	"tasknotes/internal/model"
	"tasknotes/internal/timeutil"
)

// MockStore is an in-memory Store for engine tests.
type MockStore struct {
	mu sync.Mutex

	Templates     []model.RecurringTemplate
	Instances     []model.Todo
	TemplateAttrs map[string][]string // templateID -> attribute IDs
	Assignments   map[string][]string // todoID -> attribute IDs
	Watermarks    map[string]time.Time

	// FailInsertOn makes InsertInstance fail for the given YYYY-MM-DD dates.
	FailInsertOn map[string]error
	FindErr      error
	ListAttrErr  error
	AssignErr    error
	WatermarkErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		TemplateAttrs: make(map[string][]string),
		Assignments:   make(map[string][]string),
		Watermarks:    make(map[string]time.Time),
		FailInsertOn:  make(map[string]error),
	}
}

func (m *MockStore) ListEnabledTemplates(ctx context.Context, asOf time.Time) ([]model.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RecurringTemplate
	for _, tpl := range m.Templates {
		if !tpl.Enabled {
			continue
		}
		if tpl.EndDate != nil && tpl.EndDate.Before(timeutil.StartOfDay(asOf)) {
			continue
		}
		out = append(out, tpl)
	}
	return out, nil
}

func (m *MockStore) FindInstanceByTemplateAndDateRange(ctx context.Context, templateID string, startOfDay, endOfDay time.Time) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for i := range m.Instances {
		todo := m.Instances[i]
		if todo.RecurringTemplateID == nil || *todo.RecurringTemplateID != templateID {
			continue
		}
		if todo.StartDate == nil {
			continue
		}
		if !todo.StartDate.Before(startOfDay) && !todo.StartDate.After(endOfDay) {
			found := todo
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockStore) InsertInstance(ctx context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if todo.ScheduledOn != nil {
		if err, ok := m.FailInsertOn[todo.ScheduledOn.Format(time.DateOnly)]; ok {
			return err
		}
	}
	for _, existing := range m.Instances {
		if existing.RecurringTemplateID != nil && todo.RecurringTemplateID != nil &&
			*existing.RecurringTemplateID == *todo.RecurringTemplateID &&
			existing.ScheduledOn != nil && todo.ScheduledOn != nil &&
			existing.ScheduledOn.Equal(*todo.ScheduledOn) {
			return ErrDuplicateInstance
		}
	}
	m.Instances = append(m.Instances, *todo)
	return nil
}

func (m *MockStore) ListTemplateAttributeIDs(ctx context.Context, templateID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListAttrErr != nil {
		return nil, m.ListAttrErr
	}
	return m.TemplateAttrs[templateID], nil
}

func (m *MockStore) InsertTagAssignments(ctx context.Context, todoID string, attributeIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AssignErr != nil {
		return m.AssignErr
	}
	m.Assignments[todoID] = append(m.Assignments[todoID], attributeIDs...)
	return nil
}

func (m *MockStore) UpdateTemplateWatermark(ctx context.Context, templateID string, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WatermarkErr != nil {
		return m.WatermarkErr
	}
	m.Watermarks[templateID] = date
	for i := range m.Templates {
		if m.Templates[i].ID == templateID {
			d := date
			m.Templates[i].LastGeneratedDate = &d
		}
	}
	return nil
}
