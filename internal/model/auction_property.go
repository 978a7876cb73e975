package model

import "time"

type AuctionStatus string

const (
	AuctionStatusPreview   AuctionStatus = "preview"
	AuctionStatusLive      AuctionStatus = "live"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusSold      AuctionStatus = "sold"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// AuctionProperty is the single mutable source of truth for an auction's
// current price. Bids are appended separately; current_bid/bid_count here
// must only move through conditional updates.
type AuctionProperty struct {
	ID             uint64        `gorm:"primaryKey;autoIncrement"`
	Title          string        `gorm:"size:255;not null"`
	Description    string        `gorm:"type:text"`
	Location       string        `gorm:"size:255"`
	PreviewStart   time.Time     `gorm:"column:preview_start;not null"`
	StartTime      time.Time     `gorm:"column:start_time;index;not null"`
	EndTime        time.Time     `gorm:"column:end_time;index;not null"`
	ReservePrice   int64         `gorm:"column:reserve_price;not null"`
	BuyNowPrice    *int64        `gorm:"column:buy_now_price"`
	CurrentBid     int64         `gorm:"column:current_bid;not null;default:0"`
	BidCount       uint          `gorm:"column:bid_count;not null;default:0"`
	Status         AuctionStatus `gorm:"column:status;size:32;index;not null"`
	CommissionRate float64       `gorm:"column:commission_rate;not null;default:0"`
	CreatedAt      time.Time     `gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime"`
}

func (AuctionProperty) TableName() string {
	return "auction_properties"
}
