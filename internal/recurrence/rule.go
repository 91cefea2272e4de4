package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasknotes/internal/model"
	"tasknotes/internal/timeutil"
)

// Frequency of a recurrence rule.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// TimeOfDay is a local wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	var second int
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return TimeOfDay{}, fmt.Errorf("invalid second in %q", s)
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On places the time of day onto the given calendar date.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, date.Location())
}

// Rule is the immutable schedule of a recurring template.
type Rule struct {
	Frequency Frequency
	Interval  int
	// Weekdays uses 0=Sunday..6=Saturday. Required for Weekly, ignored for Daily.
	Weekdays  []time.Weekday
	StartTime *TimeOfDay
	// EndDate is the last date the rule may fire on (date-only, local midnight).
	EndDate       *time.Time
	Enabled       bool
	LastGenerated *time.Time
}

// Validate checks the rule invariants.
func (r Rule) Validate() error {
	switch r.Frequency {
	case Daily, Weekly:
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	if r.Interval < 1 {
		return fmt.Errorf("interval must be >= 1, got %d", r.Interval)
	}
	if r.Frequency == Weekly {
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("weekly rule requires at least one weekday")
		}
		for _, wd := range r.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return fmt.Errorf("weekday out of range: %d", wd)
			}
		}
	}
	return nil
}

// RuleFromTemplate builds the rule value object from a stored template.
func RuleFromTemplate(tpl *model.RecurringTemplate) (Rule, error) {
	rule := Rule{
		Interval: tpl.IntervalValue,
		Enabled:  tpl.Enabled,
	}
	switch tpl.Frequency {
	case model.FrequencyDaily:
		rule.Frequency = Daily
	case model.FrequencyWeekly:
		rule.Frequency = Weekly
	default:
		return Rule{}, fmt.Errorf("template %s: unknown frequency %q", tpl.ID, tpl.Frequency)
	}
	for _, wd := range tpl.Weekdays {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
	}
	if tpl.StartTime != nil {
		t, err := ParseTimeOfDay(*tpl.StartTime)
		if err != nil {
			return Rule{}, fmt.Errorf("template %s: %w", tpl.ID, err)
		}
		rule.StartTime = &t
	}
	if tpl.EndDate != nil {
		d := timeutil.StartOfDay(*tpl.EndDate)
		rule.EndDate = &d
	}
	if tpl.LastGeneratedDate != nil {
		d := timeutil.StartOfDay(*tpl.LastGeneratedDate)
		rule.LastGenerated = &d
	}
	if err := rule.Validate(); err != nil {
		return Rule{}, fmt.Errorf("template %s: %w", tpl.ID, err)
	}
	return rule, nil
}
