package event

import (
	"context"

	"gorm.io/gorm"
)

// Repository describes database operations available for events.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, event *Event) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var event Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) Exists(ctx context.Context, id string) (bool, error) {
	if r == nil || r.db == nil {
		return false, gorm.ErrInvalidDB
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
