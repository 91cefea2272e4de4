package model

import "time"

// Note is a free-form text note.
type Note struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	UserID    string `gorm:"index"`
	Title     string
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
