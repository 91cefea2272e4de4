package model

import "time"

// Attribute is a colored label (tag) scoped to a user. Names are unique per
// user; the same attribute may be attached to many todos and templates.
type Attribute struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	UserID    string `gorm:"index;index:idx_user_attribute_name,unique"`
	Name      string `gorm:"index:idx_user_attribute_name,unique"`
	Color     string `gorm:"type:varchar(7)"` // hex, e.g. #3B82F6
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoAttributeAssignment links an attribute to a todo.
type TodoAttributeAssignment struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	TodoID      string `gorm:"index;index:idx_todo_attribute,unique"`
	AttributeID string `gorm:"index:idx_todo_attribute,unique"`
	CreatedAt   time.Time
}

// TemplateAttributeAssignment links an attribute to a recurring template.
// Assignments are copied onto each todo the template generates.
type TemplateAttributeAssignment struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	TemplateID  string `gorm:"index;index:idx_template_attribute,unique"`
	AttributeID string `gorm:"index:idx_template_attribute,unique"`
	CreatedAt   time.Time
}
