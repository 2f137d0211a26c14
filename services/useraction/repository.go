package useraction

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, action *UserAction) error
	List(ctx context.Context) ([]UserAction, error)
	ExistsByCmdAndField(ctx context.Context, cmd, field string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, action *UserAction) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *gormRepository) List(ctx context.Context) ([]UserAction, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var actions []UserAction
	if err := r.db.WithContext(ctx).Order("cmd, field").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *gormRepository) ExistsByCmdAndField(ctx context.Context, cmd, field string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&UserAction{}).
		Where("cmd = ? AND field = ?", cmd, field).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
