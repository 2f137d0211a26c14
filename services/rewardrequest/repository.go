package rewardrequest

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, req *RewardRequest) error
	GetByID(ctx context.Context, id string) (*RewardRequest, error)
	Exists(ctx context.Context, id string) (bool, error)
	ExistsByEventRewardAndUser(ctx context.Context, eventRewardID, userID string) (bool, error)
	// Transition moves the request to `to` only while its status is one of
	// from, and reports whether a row was updated.
	Transition(ctx context.Context, id string, from []Status, to Status, reason *string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, req *RewardRequest) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*RewardRequest, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var req RewardRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) Exists(ctx context.Context, id string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&RewardRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) ExistsByEventRewardAndUser(ctx context.Context, eventRewardID, userID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&RewardRequest{}).
		Where("event_reward_id = ? AND user_id = ?", eventRewardID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) Transition(ctx context.Context, id string, from []Status, to Status, reason *string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	result := r.db.WithContext(ctx).
		Model(&RewardRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"reason":     reason,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
