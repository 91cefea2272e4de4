package model

import "time"

// Recurrence frequencies stored on a template.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// TemplateStatus is derived from Enabled and EndDate, never stored.
type TemplateStatus string

const (
	TemplateDisabled TemplateStatus = "disabled"
	TemplateActive   TemplateStatus = "active"
	TemplateExpired  TemplateStatus = "expired"
)

// RecurringTemplate defines a recurring task: the schedule plus the display
// fields copied onto every generated todo.
type RecurringTemplate struct {
	ID            string `gorm:"type:varchar(36);primaryKey"`
	UserID        string `gorm:"index"`
	Title         string
	Description   *string
	Frequency     string `gorm:"type:varchar(10)"`
	IntervalValue int    `gorm:"default:1"`
	// Weekdays holds 0=Sunday..6=Saturday; required when weekly.
	Weekdays []int `gorm:"serializer:json"`
	// StartTime is a local time of day, "HH:MM" or "HH:MM:SS". When nil,
	// generated todos start at midnight and carry no due time.
	StartTime *string `gorm:"type:varchar(8)"`
	// EndDate is the last calendar date the template may fire on.
	EndDate *time.Time
	Enabled bool `gorm:"default:true"`
	// LastGeneratedDate is the watermark: the last date through which
	// generation is known complete. Nil means never generated.
	LastGeneratedDate *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StatusAt derives the template state for a given date.
func (t *RecurringTemplate) StatusAt(today time.Time) TemplateStatus {
	if !t.Enabled {
		return TemplateDisabled
	}
	if t.EndDate != nil && t.EndDate.Before(today) {
		return TemplateExpired
	}
	return TemplateActive
}
