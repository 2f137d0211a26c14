package eventreward

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, link *EventReward) error
	GetByID(ctx context.Context, id string) (*EventReward, error)
	ExistsByEventAndReward(ctx context.Context, eventID, rewardID string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, link *EventReward) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*EventReward, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var link EventReward
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormRepository) ExistsByEventAndReward(ctx context.Context, eventID, rewardID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&EventReward{}).
		Where("event_id = ? AND reward_id = ?", eventID, rewardID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
