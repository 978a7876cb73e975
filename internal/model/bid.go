package model

import "time"

type BidStatus string

const (
	BidStatusActive    BidStatus = "active"
	BidStatusOutbid    BidStatus = "outbid"
	BidStatusWinning   BidStatus = "winning"
	BidStatusCancelled BidStatus = "cancelled"
)

// Bid is immutable once written except for the is_winning/status demotion
// applied when a later bid is accepted, and deletion as the compensating
// action of a failed auction update.
type Bid struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	AuctionPropertyID uint64    `gorm:"column:auction_property_id;index;not null"`
	UserID            string    `gorm:"column:user_id;size:128;index;not null"`
	Amount            int64     `gorm:"column:amount;not null"`
	AutoBidMax        *int64    `gorm:"column:auto_bid_max"`
	BidTime           time.Time `gorm:"column:bid_time;not null"`
	IsWinning         bool      `gorm:"column:is_winning;not null;default:false"`
	Status            BidStatus `gorm:"column:status;size:32;not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Bid) TableName() string {
	return "bids"
}
