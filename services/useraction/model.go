package useraction

import "time"

// UserAction registers a user field the game authority can answer for, and
// the command that queries it.
type UserAction struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Cmd       string    `gorm:"column:cmd;not null;uniqueIndex:idx_user_actions_cmd_field" json:"cmd"`
	Field     string    `gorm:"column:field;not null;uniqueIndex:idx_user_actions_cmd_field" json:"field"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (UserAction) TableName() string { return "user_actions" }
