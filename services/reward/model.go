package reward

import "time"

// Reward is something the game authority can grant.
type Reward struct {
	ID          string `gorm:"column:id;primaryKey" json:"id"`
	Type        string `gorm:"column:type;not null;uniqueIndex:idx_rewards_type_name" json:"type"`
	Name        string `gorm:"column:name;not null;uniqueIndex:idx_rewards_type_name" json:"name"`
	Description string `gorm:"column:description;not null" json:"description"`
	// GrantCommand is the task type the authority consumes to grant this reward.
	GrantCommand string    `gorm:"column:grant_command;not null" json:"grantCommand"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Reward) TableName() string { return "rewards" }
