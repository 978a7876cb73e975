package repository

import (
	"context"
	"errors"

	"github.com/propbid/auction-backend/internal/model"
	"gorm.io/gorm"
)

type WinnerRepository interface {
	FindByAuction(ctx context.Context, auctionID uint64) (*model.AuctionWinner, error)
	SetDB(db *gorm.DB)
}

type winnerRepository struct {
	db *gorm.DB
}

func NewWinnerRepository(db *gorm.DB) WinnerRepository {
	return &winnerRepository{db: db}
}

func (r *winnerRepository) FindByAuction(ctx context.Context, auctionID uint64) (*model.AuctionWinner, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var w model.AuctionWinner
	if err := r.db.WithContext(ctx).
		Where("auction_property_id = ?", auctionID).
		Order("id DESC").
		First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *winnerRepository) SetDB(db *gorm.DB) {
	r.db = db
}
