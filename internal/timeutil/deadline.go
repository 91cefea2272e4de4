package timeutil

import (
	"fmt"
	"time"
)

// The old store encoded "no deadline" as the maximum int64 millisecond
// timestamp. Parsed back into a time.Time that lands hundreds of millions of
// years out, so any due date at or past this year is treated as the legacy
// sentinel. New rows always use NULL instead.
const legacySentinelYear = 9000

// NoDeadline reports whether a due timestamp means "never due". All deadline
// comparisons in the codebase must go through this predicate.
func NoDeadline(due *time.Time) bool {
	return due == nil || due.Year() >= legacySentinelYear
}

// StartOfDay returns local midnight of t's calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar date.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DueStatus classifies a todo relative to its deadline.
type DueStatus string

const (
	DueNone    DueStatus = "none"     // no deadline, never overdue
	DueOverdue DueStatus = "overdue"  // deadline passed
	DueSoon    DueStatus = "due_soon" // within 48 hours
	DueOpen    DueStatus = "open"
)

// StatusAt classifies the deadline relative to now.
func StatusAt(due *time.Time, now time.Time) DueStatus {
	if NoDeadline(due) {
		return DueNone
	}
	switch {
	case now.After(*due):
		return DueOverdue
	case due.Sub(now) <= 48*time.Hour:
		return DueSoon
	default:
		return DueOpen
	}
}

// FormatRemaining renders the remaining (or elapsed) time until a deadline as
// a short human-readable string.
func FormatRemaining(due *time.Time, now time.Time) string {
	if NoDeadline(due) {
		return "no deadline"
	}
	diff := due.Sub(now)
	if diff < 0 {
		return "overdue by " + formatDuration(-diff)
	}
	return formatDuration(diff) + " left"
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
