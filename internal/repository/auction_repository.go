package repository

import (
	"context"
	"errors"
	"time"

	"github.com/propbid/auction-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

// ErrConflict is returned when a conditional write matched zero rows,
// meaning a concurrent request changed the auction first.
var ErrConflict = errors.New("conflict")

// BuyNowPurchase carries the rows written atomically when a buy-now
// purchase completes.
type BuyNowPurchase struct {
	AuctionID uint64
	Bid       *model.Bid
	Winner    *model.AuctionWinner
	Event     *model.AuctionEvent
	Amount    int64
	EndedAt   time.Time
}

type AuctionRepository interface {
	Create(ctx context.Context, a *model.AuctionProperty) error
	FindByID(ctx context.Context, id uint64) (*model.AuctionProperty, error)
	List(ctx context.Context, status model.AuctionStatus, limit, offset int) ([]model.AuctionProperty, int64, error)
	ApplyBid(ctx context.Context, auctionID uint64, expectedBidCount uint, amount int64) (int64, error)
	CompleteBuyNow(ctx context.Context, p BuyNowPurchase) error
	StartDue(ctx context.Context, now time.Time) ([]uint64, error)
	EndDue(ctx context.Context, now time.Time) ([]uint64, error)
	SetDB(db *gorm.DB)
}

type auctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) Create(ctx context.Context, a *model.AuctionProperty) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auctionRepository) FindByID(ctx context.Context, id uint64) (*model.AuctionProperty, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var a model.AuctionProperty
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *auctionRepository) List(ctx context.Context, status model.AuctionStatus, limit, offset int) ([]model.AuctionProperty, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []model.AuctionProperty
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.AuctionProperty{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("end_time asc").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ApplyBid advances current_bid/bid_count only if bid_count still equals the
// value observed during validation. Zero affected rows means another bid got
// in first; the caller deletes its bid row and retries.
func (r *auctionRepository) ApplyBid(ctx context.Context, auctionID uint64, expectedBidCount uint, amount int64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.AuctionProperty{}).
		Where("id = ? AND bid_count = ? AND status = ?", auctionID, expectedBidCount, model.AuctionStatusLive).
		Updates(map[string]interface{}{
			"current_bid": amount,
			"bid_count":   gorm.Expr("bid_count + 1"),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CompleteBuyNow performs the whole purchase in one transaction: winning bid
// insert, demotion of prior bids, auction close, winner record, audit event.
// The status guard inside the update makes a concurrent purchase impossible.
func (r *auctionRepository) CompleteBuyNow(ctx context.Context, p BuyNowPurchase) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p.Bid).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Bid{}).
			Where("auction_property_id = ? AND id <> ?", p.AuctionID, p.Bid.ID).
			Updates(map[string]interface{}{
				"is_winning": false,
				"status":     model.BidStatusOutbid,
			}).Error; err != nil {
			return err
		}
		res := tx.Model(&model.AuctionProperty{}).
			Where("id = ? AND status IN ?", p.AuctionID, []model.AuctionStatus{model.AuctionStatusPreview, model.AuctionStatusLive}).
			Updates(map[string]interface{}{
				"status":      model.AuctionStatusSold,
				"current_bid": p.Amount,
				"bid_count":   gorm.Expr("bid_count + 1"),
				"end_time":    p.EndedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		if err := tx.Create(p.Winner).Error; err != nil {
			return err
		}
		return tx.Create(p.Event).Error
	})
}

func (r *auctionRepository) StartDue(ctx context.Context, now time.Time) ([]uint64, error) {
	return r.transitionDue(ctx, model.AuctionStatusPreview, model.AuctionStatusLive, "start_time <= ?", now)
}

func (r *auctionRepository) EndDue(ctx context.Context, now time.Time) ([]uint64, error) {
	return r.transitionDue(ctx, model.AuctionStatusLive, model.AuctionStatusEnded, "end_time <= ?", now)
}

// transitionDue updates each due auction with its status in the WHERE clause
// so concurrent sweepers never double-transition a row.
func (r *auctionRepository) transitionDue(ctx context.Context, from, to model.AuctionStatus, cond string, now time.Time) ([]uint64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&model.AuctionProperty{}).
		Where("status = ?", from).
		Where(cond, now).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	var done []uint64
	for _, id := range ids {
		res := r.db.WithContext(ctx).
			Model(&model.AuctionProperty{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return done, res.Error
		}
		if res.RowsAffected > 0 {
			done = append(done, id)
		}
	}
	return done, nil
}

func (r *auctionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
