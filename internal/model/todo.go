package model

import "time"

// Todo is a single concrete task. Todos generated from a recurring template
// keep a back-reference to it but are otherwise independent: template edits
// or deletion never touch existing todos.
type Todo struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	UserID      string `gorm:"index"`
	Title       string
	Description *string
	Completed   bool `gorm:"default:false"`
	// StartDate is when the task is planned to start; nil means no fixed time.
	StartDate *time.Time
	// DueDate nil means the task never becomes overdue.
	DueDate *time.Time
	// RecurringTemplateID and ScheduledOn are set only for generated instances.
	// The unique pair enforces at most one instance per template per calendar
	// date even when two generation runs race.
	RecurringTemplateID *string    `gorm:"type:varchar(36);index;index:idx_todo_template_scheduled,unique"`
	ScheduledOn         *time.Time `gorm:"index:idx_todo_template_scheduled,unique"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
