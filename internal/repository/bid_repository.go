package repository

import (
	"context"

	"github.com/propbid/auction-backend/internal/model"
	"gorm.io/gorm"
)

type BidRepository interface {
	Create(ctx context.Context, b *model.Bid) error
	Delete(ctx context.Context, id uint64) error
	DemoteOthers(ctx context.Context, auctionID, winningBidID uint64) error
	ListByAuction(ctx context.Context, auctionID uint64, limit int) ([]model.Bid, error)
	SetDB(db *gorm.DB)
}

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Create(ctx context.Context, b *model.Bid) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(b).Error
}

// Delete is the compensating action for a bid whose auction update lost the
// conditional write. Bids are never deleted otherwise.
func (r *bidRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.Bid{}, id).Error
}

func (r *bidRepository) DemoteOthers(ctx context.Context, auctionID, winningBidID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Bid{}).
		Where("auction_property_id = ? AND id <> ? AND is_winning = ?", auctionID, winningBidID, true).
		Updates(map[string]interface{}{
			"is_winning": false,
			"status":     model.BidStatusOutbid,
		}).Error
}

func (r *bidRepository) ListByAuction(ctx context.Context, auctionID uint64, limit int) ([]model.Bid, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var list []model.Bid
	if err := r.db.WithContext(ctx).
		Where("auction_property_id = ?", auctionID).
		Order("bid_time DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bidRepository) SetDB(db *gorm.DB) {
	r.db = db
}
