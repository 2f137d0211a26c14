package reward

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, reward *Reward) error
	GetByID(ctx context.Context, id string) (*Reward, error)
	ExistsByTypeAndName(ctx context.Context, rewardType, name string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, reward *Reward) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Reward, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var reward Reward
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reward).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *gormRepository) ExistsByTypeAndName(ctx context.Context, rewardType, name string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&Reward{}).
		Where("type = ? AND name = ?", rewardType, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
