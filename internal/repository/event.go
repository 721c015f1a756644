package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// IncrementRaised and DecrementRaised adjust current_amount with a
	// single database-side arithmetic update so concurrent webhook
	// deliveries cannot lose updates.
	IncrementRaised(ctx context.Context, tx *gorm.DB, id string, amount decimal.Decimal) error
	DecrementRaised(ctx context.Context, tx *gorm.DB, id string, amount decimal.Decimal) error
}

type eventRepoImpl struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepoImpl{
		db: db,
	}
}

func (r *eventRepoImpl) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepoImpl) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error

	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *eventRepoImpl) IncrementRaised(ctx context.Context, tx *gorm.DB, id string, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("current_amount + ?", amount),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *eventRepoImpl) DecrementRaised(ctx context.Context, tx *gorm.DB, id string, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("current_amount - ?", amount),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
