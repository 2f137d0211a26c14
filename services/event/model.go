package event

import (
	"time"

	"smallbiznis-promotion/services/condition"

	"gorm.io/datatypes"
)

// Event is a time-boxed promotion gated by a condition tree.
type Event struct {
	ID          string                             `gorm:"column:id;primaryKey" json:"id"`
	Title       string                             `gorm:"column:title;not null" json:"title"`
	Description string                             `gorm:"column:description" json:"description"`
	StartedAt   time.Time                          `gorm:"column:started_at;not null;index" json:"startedAt"`
	EndedAt     time.Time                          `gorm:"column:ended_at;not null;index" json:"endedAt"`
	IsActive    bool                               `gorm:"column:is_active;not null;default:false" json:"isActive"`
	Condition   datatypes.JSONType[condition.Node] `gorm:"column:condition;not null" json:"condition"`
	CreatedAt   time.Time                          `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time                          `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName sets the table name for the Event model.
func (Event) TableName() string { return "events" }

// InProgress reports whether the event is active and now is inside [StartedAt, EndedAt).
func (e *Event) InProgress(now time.Time) bool {
	return e.IsActive && !now.Before(e.StartedAt) && now.Before(e.EndedAt)
}
