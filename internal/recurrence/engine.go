package recurrence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tasknotes/internal/model"
	"tasknotes/internal/timeutil"
)

// ErrDuplicateInstance is returned by a Store when an insert hits the
// per-template per-date uniqueness constraint. The engine treats it as proof
// that another run already created the instance.
var ErrDuplicateInstance = errors.New("duplicate recurring instance")

// Store is the persistence surface the engine materializes against.
type Store interface {
	// ListEnabledTemplates returns templates with enabled=true whose end date
	// is absent or on/after asOf.
	ListEnabledTemplates(ctx context.Context, asOf time.Time) ([]model.RecurringTemplate, error)
	// FindInstanceByTemplateAndDateRange returns the instance of the template
	// whose start timestamp falls in [startOfDay, endOfDay], or nil.
	FindInstanceByTemplateAndDateRange(ctx context.Context, templateID string, startOfDay, endOfDay time.Time) (*model.Todo, error)
	InsertInstance(ctx context.Context, todo *model.Todo) error
	ListTemplateAttributeIDs(ctx context.Context, templateID string) ([]string, error)
	InsertTagAssignments(ctx context.Context, todoID string, attributeIDs []string) error
	UpdateTemplateWatermark(ctx context.Context, templateID string, date time.Time) error
}

// CreatedInstance records one todo materialized during a run.
type CreatedInstance struct {
	TemplateID string `json:"templateId"`
	InstanceID string `json:"instanceId"`
	Date       string `json:"date"` // YYYY-MM-DD
}

// TemplateFailure records a template that could not be fully processed.
type TemplateFailure struct {
	TemplateID string `json:"templateId"`
	Error      string `json:"error"`
}

// Report summarizes one materialization run.
type Report struct {
	Generated []CreatedInstance `json:"details"`
	Failures  []TemplateFailure `json:"failures,omitempty"`
}

// Engine materializes concrete todos from recurring templates. A run is
// idempotent: every candidate date is checked for an existing instance before
// insert, and the unique constraint backstops the check if two runs race.
type Engine struct {
	store       Store
	log         *zap.SugaredLogger
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency bounds the number of templates processed in parallel.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEngine(store Store, log *zap.SugaredLogger, opts ...Option) *Engine {
	e := &Engine{store: store, log: log, concurrency: 4}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run materializes all enabled templates up to today. Per-template failures
// are collected in the report, never returned as the run error; the returned
// error is reserved for being unable to list templates at all.
func (e *Engine) Run(ctx context.Context, today time.Time) (*Report, error) {
	return e.run(ctx, "", today)
}

// RunForUser materializes only the given user's enabled templates.
func (e *Engine) RunForUser(ctx context.Context, userID string, today time.Time) (*Report, error) {
	return e.run(ctx, userID, today)
}

func (e *Engine) run(ctx context.Context, userID string, today time.Time) (*Report, error) {
	today = timeutil.StartOfDay(today)

	templates, err := e.store.ListEnabledTemplates(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list enabled templates: %w", err)
	}

	report := &Report{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, tpl := range templates {
		if userID != "" && tpl.UserID != userID {
			continue
		}
		tpl := tpl
		g.Go(func() error {
			created, err := e.materializeTemplate(gctx, &tpl, today)
			mu.Lock()
			defer mu.Unlock()
			report.Generated = append(report.Generated, created...)
			if err != nil {
				e.log.Errorw("materialize template", "templateId", tpl.ID, "error", err)
				report.Failures = append(report.Failures, TemplateFailure{TemplateID: tpl.ID, Error: err.Error()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// materializeTemplate creates every missing instance of one template between
// its watermark and today, then advances the watermark. On a mid-run failure
// the watermark stops at the last fully processed date so the next run
// resumes there.
func (e *Engine) materializeTemplate(ctx context.Context, tpl *model.RecurringTemplate, today time.Time) ([]CreatedInstance, error) {
	rule, err := RuleFromTemplate(tpl)
	if err != nil {
		return nil, err
	}
	if !rule.Enabled {
		return nil, nil
	}
	if rule.EndDate != nil && rule.EndDate.Before(today) {
		return nil, nil
	}

	origin := timeutil.StartOfDay(tpl.CreatedAt)
	if rule.LastGenerated != nil {
		origin = *rule.LastGenerated
	}

	var created []CreatedInstance
	var lastProcessed time.Time

	finish := func(runErr error) ([]CreatedInstance, error) {
		if !lastProcessed.IsZero() {
			if err := e.store.UpdateTemplateWatermark(ctx, tpl.ID, lastProcessed); err != nil {
				e.log.Errorw("advance watermark", "templateId", tpl.ID, "error", err)
				if runErr == nil {
					runErr = fmt.Errorf("advance watermark: %w", err)
				}
			}
		}
		return created, runErr
	}

	for cur := origin; ; {
		candidate := NextOccurrence(rule, cur)
		if candidate.After(today) {
			break
		}

		existing, err := e.store.FindInstanceByTemplateAndDateRange(ctx, tpl.ID,
			timeutil.StartOfDay(candidate), timeutil.EndOfDay(candidate))
		if err != nil {
			return finish(fmt.Errorf("check existing instance for %s: %w", candidate.Format(time.DateOnly), err))
		}

		if existing == nil {
			todo := buildInstance(tpl, rule, candidate)
			switch err := e.store.InsertInstance(ctx, todo); {
			case err == nil:
				e.copyAttributes(ctx, tpl.ID, todo.ID)
				created = append(created, CreatedInstance{
					TemplateID: tpl.ID,
					InstanceID: todo.ID,
					Date:       candidate.Format(time.DateOnly),
				})
			case errors.Is(err, ErrDuplicateInstance):
				// A concurrent run won the race; the instance exists.
			default:
				return finish(fmt.Errorf("insert instance for %s: %w", candidate.Format(time.DateOnly), err))
			}
		}

		lastProcessed = candidate
		cur = candidate
	}

	return finish(nil)
}

// copyAttributes attaches the template's current attribute set to a freshly
// created todo. Failure leaves the todo in place: tags can be reattached
// later, so this only warns.
func (e *Engine) copyAttributes(ctx context.Context, templateID, todoID string) {
	attrIDs, err := e.store.ListTemplateAttributeIDs(ctx, templateID)
	if err != nil {
		e.log.Warnw("list template attributes", "templateId", templateID, "todoId", todoID, "error", err)
		return
	}
	if len(attrIDs) == 0 {
		return
	}
	if err := e.store.InsertTagAssignments(ctx, todoID, attrIDs); err != nil {
		e.log.Warnw("copy attributes to instance", "templateId", templateID, "todoId", todoID, "error", err)
	}
}

func buildInstance(tpl *model.RecurringTemplate, rule Rule, date time.Time) *model.Todo {
	start := timeutil.StartOfDay(date)
	var due *time.Time
	if rule.StartTime != nil {
		start = rule.StartTime.On(date)
		end := timeutil.EndOfDay(date)
		due = &end
	}
	scheduledOn := timeutil.StartOfDay(date)
	templateID := tpl.ID
	return &model.Todo{
		ID:                  uuid.New().String(),
		UserID:              tpl.UserID,
		Title:               tpl.Title,
		Description:         tpl.Description,
		Completed:           false,
		StartDate:           &start,
		DueDate:             due,
		RecurringTemplateID: &templateID,
		ScheduledOn:         &scheduledOn,
	}
}
