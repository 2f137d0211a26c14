package eventreward

import "time"

// EventReward links a reward to an event with a grant quantity.
type EventReward struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	EventID   string    `gorm:"column:event_id;not null;uniqueIndex:idx_event_rewards_event_reward" json:"eventId"`
	RewardID  string    `gorm:"column:reward_id;not null;uniqueIndex:idx_event_rewards_event_reward;index" json:"rewardId"`
	Qty       int       `gorm:"column:qty;not null" json:"qty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (EventReward) TableName() string { return "event_rewards" }
