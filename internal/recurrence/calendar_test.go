package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestNextOccurrenceDaily(t *testing.T) {
	from := date(2024, time.March, 15)
	for interval := 1; interval <= 30; interval++ {
		rule := Rule{Frequency: Daily, Interval: interval, Enabled: true}
		got := NextOccurrence(rule, from)
		want := from.AddDate(0, 0, interval)
		if !got.Equal(want) {
			t.Errorf("interval %d: got %v, want %v", interval, got, want)
		}
	}
}

func TestNextOccurrenceDailyIgnoresTimeOfDay(t *testing.T) {
	rule := Rule{Frequency: Daily, Interval: 1, Enabled: true}
	from := time.Date(2024, time.March, 15, 17, 45, 12, 0, time.Local)
	got := NextOccurrence(rule, from)
	if !got.Equal(date(2024, time.March, 16)) {
		t.Errorf("got %v, want midnight of the next day", got)
	}
}

func TestNextOccurrenceWeekly(t *testing.T) {
	// Mon/Wed/Fri starting from Monday 2024-01-01.
	rule := Rule{
		Frequency: Weekly,
		Interval:  1,
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Enabled:   true,
	}

	steps := []time.Time{
		date(2024, time.January, 3), // Wed
		date(2024, time.January, 5), // Fri
		date(2024, time.January, 8), // Mon
		date(2024, time.January, 10),
		date(2024, time.January, 12),
	}

	cur := date(2024, time.January, 1)
	for i, want := range steps {
		got := NextOccurrence(rule, cur)
		if !got.Equal(want) {
			t.Fatalf("step %d: got %v, want %v", i, got, want)
		}
		cur = got
	}
}

func TestNextOccurrenceWeeklyMultiWeekInterval(t *testing.T) {
	// Every 2 weeks on Tuesday, from Tuesday 2024-01-02: one week out is
	// rejected (odd week count), two weeks out matches.
	rule := Rule{
		Frequency: Weekly,
		Interval:  2,
		Weekdays:  []time.Weekday{time.Tuesday},
		Enabled:   true,
	}
	got := NextOccurrence(rule, date(2024, time.January, 2))
	want := date(2024, time.January, 16)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceWeeklyWeekBoundarySet(t *testing.T) {
	// Weekday set spanning the week boundary with a multi-week interval.
	// Every returned date must be in the set and strictly increasing; days
	// less than a whole week out always qualify regardless of interval.
	rule := Rule{
		Frequency: Weekly,
		Interval:  2,
		Weekdays:  []time.Weekday{time.Sunday, time.Saturday},
		Enabled:   true,
	}

	cur := date(2024, time.January, 6) // Saturday
	for i := 0; i < 30; i++ {
		got := NextOccurrence(rule, cur)
		if !got.After(cur) {
			t.Fatalf("iteration %d: %v not after %v", i, got, cur)
		}
		if wd := got.Weekday(); wd != time.Sunday && wd != time.Saturday {
			t.Fatalf("iteration %d: weekday %v not in rule set", i, wd)
		}
		cur = got
	}
}

func TestNextOccurrenceWeeklyAllDaysDegeneratesToDaily(t *testing.T) {
	rule := Rule{
		Frequency: Weekly,
		Interval:  1,
		Weekdays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		Enabled: true,
	}
	cur := date(2024, time.June, 1)
	for i := 0; i < 14; i++ {
		got := NextOccurrence(rule, cur)
		if !got.Equal(cur.AddDate(0, 0, 1)) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, cur.AddDate(0, 0, 1))
		}
		cur = got
	}
}

func TestNextOccurrenceWeeklyFallbackJump(t *testing.T) {
	// An empty weekday set never passes validation; the fallback still must
	// not loop or panic, and lands a full cycle ahead.
	rule := Rule{Frequency: Weekly, Interval: 3, Enabled: true}
	got := NextOccurrence(rule, date(2024, time.January, 1))
	want := date(2024, time.January, 22)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"daily ok", Rule{Frequency: Daily, Interval: 1}, false},
		{"weekly ok", Rule{Frequency: Weekly, Interval: 1, Weekdays: []time.Weekday{time.Monday}}, false},
		{"zero interval", Rule{Frequency: Daily, Interval: 0}, true},
		{"negative interval", Rule{Frequency: Daily, Interval: -2}, true},
		{"weekly without weekdays", Rule{Frequency: Weekly, Interval: 1}, true},
		{"weekday out of range", Rule{Frequency: Weekly, Interval: 1, Weekdays: []time.Weekday{7}}, true},
		{"unknown frequency", Rule{Frequency: "monthly", Interval: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"07:00", TimeOfDay{Hour: 7}, false},
		{"23:59:59", TimeOfDay{Hour: 23, Minute: 59, Second: 59}, false},
		{"00:00", TimeOfDay{}, false},
		{"24:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"noon", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
