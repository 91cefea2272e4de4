package recurrence

import (
	"time"

	"tasknotes/internal/timeutil"
)

// NextOccurrence returns the first date strictly after from on which the rule
// fires. It is pure date math: enabled/end-date filtering is the engine's job.
//
// Daily rules always land exactly Interval days ahead. Weekly rules scan
// forward one day at a time for up to 7*Interval days, accepting a day when
// its weekday is in the rule's set and the number of whole weeks elapsed since
// from is zero or a multiple of Interval. The post-scan fallback (jump
// Interval weeks, snap forward to the smallest weekday) cannot be reached for
// a valid rule, since a 7*Interval-day window always contains a qualifying
// day; it is kept as a safety net only.
func NextOccurrence(r Rule, from time.Time) time.Time {
	from = timeutil.StartOfDay(from)

	if r.Frequency == Daily {
		return from.AddDate(0, 0, r.Interval)
	}

	for days := 1; days <= 7*r.Interval; days++ {
		candidate := from.AddDate(0, 0, days)
		if !r.firesOn(candidate.Weekday()) {
			continue
		}
		weeks := days / 7
		if weeks == 0 || weeks%r.Interval == 0 {
			return candidate
		}
	}

	// Fallback: jump a full cycle, then snap forward to the earliest weekday.
	jump := from.AddDate(0, 0, 7*r.Interval)
	if len(r.Weekdays) == 0 {
		return jump
	}
	target := minWeekday(r.Weekdays)
	offset := (int(target) - int(jump.Weekday()) + 7) % 7
	return jump.AddDate(0, 0, offset)
}

func (r Rule) firesOn(wd time.Weekday) bool {
	for _, w := range r.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

func minWeekday(weekdays []time.Weekday) time.Weekday {
	min := weekdays[0]
	for _, wd := range weekdays[1:] {
		if wd < min {
			min = wd
		}
	}
	return min
}
