package repository

import (
	"context"

	"github.com/propbid/auction-backend/internal/model"
	"gorm.io/gorm"
)

type EventRepository interface {
	Append(ctx context.Context, e *model.AuctionEvent) error
	ListByAuction(ctx context.Context, auctionID uint64, limit int) ([]model.AuctionEvent, error)
	SetDB(db *gorm.DB)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, e *model.AuctionEvent) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepository) ListByAuction(ctx context.Context, auctionID uint64, limit int) ([]model.AuctionEvent, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []model.AuctionEvent
	if err := r.db.WithContext(ctx).
		Where("auction_property_id = ?", auctionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *eventRepository) SetDB(db *gorm.DB) {
	r.db = db
}
