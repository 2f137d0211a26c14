package rewardrequest

import "time"

// RewardRequest is a user's claim on an event reward.
type RewardRequest struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	EventRewardID string    `gorm:"column:event_reward_id;not null;uniqueIndex:idx_reward_requests_event_reward_user;index" json:"eventRewardId"`
	UserID        string    `gorm:"column:user_id;not null;uniqueIndex:idx_reward_requests_event_reward_user;index" json:"userId"`
	Status        Status    `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	Reason        *string   `gorm:"column:reason" json:"reason"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (RewardRequest) TableName() string { return "reward_requests" }

// StatusChange is published after every applied transition.
type StatusChange struct {
	RewardRequestID string    `json:"rewardRequestId"`
	EventRewardID   string    `json:"eventRewardId"`
	UserID          string    `json:"userId"`
	Action          Action    `json:"action"`
	Status          Status    `json:"status"`
	Reason          *string   `json:"reason,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}
