package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tasknotes/internal/model"
	"tasknotes/internal/timeutil"
)

func newTestEngine(store Store) *Engine {
	return NewEngine(store, zap.NewNop().Sugar())
}

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func dailyTemplate(id string, lastGenerated *time.Time) model.RecurringTemplate {
	return model.RecurringTemplate{
		ID:                id,
		UserID:            "user-1",
		Title:             "Water the plants",
		Frequency:         model.FrequencyDaily,
		IntervalValue:     1,
		Enabled:           true,
		LastGeneratedDate: lastGenerated,
		CreatedAt:         date(2023, time.December, 1),
	}
}

func TestEngineCatchUp(t *testing.T) {
	// 10 days behind: one run creates exactly 10 instances with consecutive
	// dates and advances the watermark to today.
	today := date(2024, time.February, 20)
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 10)),
	}

	report, err := newTestEngine(store).Run(context.Background(), today)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Generated) != 10 {
		t.Fatalf("expected 10 instances, got %d", len(report.Generated))
	}
	for i, created := range report.Generated {
		want := date(2024, time.February, 11+i).Format(time.DateOnly)
		if created.Date != want {
			t.Errorf("instance %d: date %s, want %s", i, created.Date, want)
		}
	}
	if got := store.Watermarks["tpl-1"]; !got.Equal(today) {
		t.Errorf("watermark %v, want %v", got, today)
	}
	if len(report.Failures) != 0 {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
}

func TestEngineIdempotence(t *testing.T) {
	today := date(2024, time.February, 20)
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 15)),
	}
	engine := newTestEngine(store)

	first, err := engine.Run(context.Background(), today)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if len(first.Generated) != 5 {
		t.Fatalf("first run created %d, want 5", len(first.Generated))
	}

	second, err := engine.Run(context.Background(), today)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.Generated) != 0 {
		t.Errorf("second run created %d instances, want 0", len(second.Generated))
	}
	if len(store.Instances) != 5 {
		t.Errorf("store holds %d instances, want 5", len(store.Instances))
	}
	if got := store.Watermarks["tpl-1"]; !got.Equal(today) {
		t.Errorf("watermark %v, want %v", got, today)
	}
}

func TestEngineWeeklyWorkedExample(t *testing.T) {
	// Weekly Mon/Wed/Fri at 07:00, watermark Monday 2024-01-01, today
	// 2024-01-08: expect Wed 3rd, Fri 5th, Mon 8th.
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{{
		ID:                "tpl-w",
		UserID:            "user-1",
		Title:             "Standup prep",
		Frequency:         model.FrequencyWeekly,
		IntervalValue:     1,
		Weekdays:          []int{1, 3, 5},
		StartTime:         strPtr("07:00"),
		Enabled:           true,
		LastGeneratedDate: datePtr(2024, time.January, 1),
		CreatedAt:         date(2023, time.December, 1),
	}}

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.January, 8))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantDates := []string{"2024-01-03", "2024-01-05", "2024-01-08"}
	if len(report.Generated) != len(wantDates) {
		t.Fatalf("created %d instances, want %d", len(report.Generated), len(wantDates))
	}
	for i, created := range report.Generated {
		if created.Date != wantDates[i] {
			t.Errorf("instance %d: date %s, want %s", i, created.Date, wantDates[i])
		}
	}

	for _, todo := range store.Instances {
		if todo.StartDate == nil || todo.StartDate.Hour() != 7 || todo.StartDate.Minute() != 0 {
			t.Errorf("instance start %v, want 07:00", todo.StartDate)
		}
		if todo.DueDate == nil {
			t.Error("instance has no due date, want end of day")
			continue
		}
		if todo.DueDate.Hour() != 23 || todo.DueDate.Minute() != 59 || todo.DueDate.Second() != 59 {
			t.Errorf("instance due %v, want 23:59:59.999", todo.DueDate)
		}
		if todo.Completed {
			t.Error("new instance must not be completed")
		}
		if todo.Title != "Standup prep" {
			t.Errorf("title %q not copied from template", todo.Title)
		}
	}

	if got := store.Watermarks["tpl-w"]; !got.Equal(date(2024, time.January, 8)) {
		t.Errorf("watermark %v, want 2024-01-08", got)
	}
}

func TestEngineNoStartTimeMeansNoDeadline(t *testing.T) {
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 19)),
	}

	_, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(store.Instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(store.Instances))
	}

	todo := store.Instances[0]
	if !timeutil.NoDeadline(todo.DueDate) {
		t.Errorf("due date %v should mean no deadline", todo.DueDate)
	}
	if todo.StartDate == nil || todo.StartDate.Hour() != 0 || todo.StartDate.Minute() != 0 {
		t.Errorf("start %v, want local midnight", todo.StartDate)
	}
	if got := timeutil.StatusAt(todo.DueDate, date(2999, time.January, 1)); got != timeutil.DueNone {
		t.Errorf("status %v for far-future now, want %v", got, timeutil.DueNone)
	}
}

func TestEngineDisabledAndExpiredTemplates(t *testing.T) {
	today := date(2024, time.February, 20)

	t.Run("disabled template generates nothing", func(t *testing.T) {
		store := NewMockStore()
		tpl := dailyTemplate("tpl-off", datePtr(2024, time.February, 10))
		tpl.Enabled = false
		store.Templates = []model.RecurringTemplate{tpl}

		report, err := newTestEngine(store).Run(context.Background(), today)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(report.Generated) != 0 || len(store.Instances) != 0 {
			t.Error("disabled template must not generate instances")
		}
		if _, ok := store.Watermarks["tpl-off"]; ok {
			t.Error("watermark must not advance for a disabled template")
		}
	})

	t.Run("expired template generates nothing", func(t *testing.T) {
		store := NewMockStore()
		tpl := dailyTemplate("tpl-exp", datePtr(2024, time.February, 10))
		tpl.EndDate = datePtr(2024, time.February, 15)
		store.Templates = []model.RecurringTemplate{tpl}

		report, err := newTestEngine(store).Run(context.Background(), today)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(report.Generated) != 0 || len(store.Instances) != 0 {
			t.Error("expired template must not generate instances")
		}
		if _, ok := store.Watermarks["tpl-exp"]; ok {
			t.Error("watermark must not advance for an expired template")
		}
	})
}

func TestEngineMalformedRuleReportedAndSkipped(t *testing.T) {
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		{
			ID:            "tpl-bad",
			UserID:        "user-1",
			Title:         "Broken",
			Frequency:     model.FrequencyWeekly,
			IntervalValue: 1,
			// no weekdays: malformed
			Enabled:           true,
			LastGeneratedDate: datePtr(2024, time.February, 18),
			CreatedAt:         date(2024, time.January, 1),
		},
		dailyTemplate("tpl-ok", datePtr(2024, time.February, 19)),
	}

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Failures) != 1 || report.Failures[0].TemplateID != "tpl-bad" {
		t.Errorf("failures = %v, want one for tpl-bad", report.Failures)
	}
	if _, ok := store.Watermarks["tpl-bad"]; ok {
		t.Error("watermark must not advance for a malformed template")
	}
	// The healthy template is unaffected.
	if len(report.Generated) != 1 || report.Generated[0].TemplateID != "tpl-ok" {
		t.Errorf("generated = %v, want one instance for tpl-ok", report.Generated)
	}
}

func TestEngineInsertFailureStopsWatermarkAtLastSuccess(t *testing.T) {
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 10)),
	}
	store.FailInsertOn["2024-02-13"] = errors.New("store unavailable")

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 11th and 12th inserted, 13th failed, nothing after attempted.
	if len(report.Generated) != 2 {
		t.Fatalf("created %d instances, want 2", len(report.Generated))
	}
	if len(report.Failures) != 1 {
		t.Fatalf("failures = %v, want 1", report.Failures)
	}
	if got := store.Watermarks["tpl-1"]; !got.Equal(date(2024, time.February, 12)) {
		t.Errorf("watermark %v, want 2024-02-12 (last success)", got)
	}

	// The next run resumes from the stalled watermark and completes.
	delete(store.FailInsertOn, "2024-02-13")
	second, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.Generated) != 8 {
		t.Errorf("second run created %d, want 8", len(second.Generated))
	}
	if got := store.Watermarks["tpl-1"]; !got.Equal(date(2024, time.February, 20)) {
		t.Errorf("watermark %v, want today", got)
	}
}

func TestEngineDuplicateInsertIsBenign(t *testing.T) {
	// Seed an instance the existence check cannot see (start outside the day
	// range finder, but same scheduled date) to force the unique-constraint
	// path.
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 19)),
	}
	templateID := "tpl-1"
	outOfRange := date(2024, time.February, 19) // start timestamp on the wrong day
	scheduled := date(2024, time.February, 20)
	store.Instances = append(store.Instances, model.Todo{
		ID:                  "existing",
		RecurringTemplateID: &templateID,
		StartDate:           &outOfRange,
		ScheduledOn:         &scheduled,
	})

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Generated) != 0 {
		t.Errorf("created %d instances, want 0 (duplicate treated as no-op)", len(report.Generated))
	}
	if len(report.Failures) != 0 {
		t.Errorf("failures = %v, want none", report.Failures)
	}
	if got := store.Watermarks["tpl-1"]; !got.Equal(date(2024, time.February, 20)) {
		t.Errorf("watermark %v, want today despite the duplicate", got)
	}
}

func TestEngineCopiesTemplateAttributes(t *testing.T) {
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 19)),
	}
	store.TemplateAttrs["tpl-1"] = []string{"attr-a", "attr-b"}

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Generated) != 1 {
		t.Fatalf("created %d instances, want 1", len(report.Generated))
	}

	got := store.Assignments[report.Generated[0].InstanceID]
	if len(got) != 2 || got[0] != "attr-a" || got[1] != "attr-b" {
		t.Errorf("assignments = %v, want [attr-a attr-b]", got)
	}
}

func TestEngineTagCopyFailureKeepsInstance(t *testing.T) {
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 19)),
	}
	store.TemplateAttrs["tpl-1"] = []string{"attr-a"}
	store.AssignErr = errors.New("assignment table unavailable")

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Instance creation survives; the failed copy is only a warning.
	if len(report.Generated) != 1 {
		t.Fatalf("created %d instances, want 1", len(report.Generated))
	}
	if len(report.Failures) != 0 {
		t.Errorf("failures = %v, want none", report.Failures)
	}
	if len(store.Instances) != 1 {
		t.Errorf("store holds %d instances, want 1", len(store.Instances))
	}
}

func TestEngineRunForUserFiltersTemplates(t *testing.T) {
	store := NewMockStore()
	mine := dailyTemplate("tpl-mine", datePtr(2024, time.February, 19))
	theirs := dailyTemplate("tpl-theirs", datePtr(2024, time.February, 19))
	theirs.UserID = "user-2"
	store.Templates = []model.RecurringTemplate{mine, theirs}

	report, err := newTestEngine(store).RunForUser(context.Background(), "user-1", date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("RunForUser failed: %v", err)
	}
	if len(report.Generated) != 1 || report.Generated[0].TemplateID != "tpl-mine" {
		t.Errorf("generated = %v, want only tpl-mine", report.Generated)
	}
	if _, ok := store.Watermarks["tpl-theirs"]; ok {
		t.Error("other user's watermark must be untouched")
	}
}

func TestEngineExistenceCheckSkipsWithoutError(t *testing.T) {
	// An instance already inside the day range: skipped, watermark still
	// advances so the range is never rescanned.
	store := NewMockStore()
	store.Templates = []model.RecurringTemplate{
		dailyTemplate("tpl-1", datePtr(2024, time.February, 19)),
	}
	templateID := "tpl-1"
	existing := time.Date(2024, time.February, 20, 9, 30, 0, 0, time.Local)
	scheduled := date(2024, time.February, 20)
	store.Instances = append(store.Instances, model.Todo{
		ID:                  "existing",
		RecurringTemplateID: &templateID,
		StartDate:           &existing,
		ScheduledOn:         &scheduled,
	})

	report, err := newTestEngine(store).Run(context.Background(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Generated) != 0 || len(report.Failures) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if got := store.Watermarks["tpl-1"]; !got.Equal(date(2024, time.February, 20)) {
		t.Errorf("watermark %v, want today", got)
	}
}
