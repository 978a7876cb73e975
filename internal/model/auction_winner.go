package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// AuctionWinner records the settled outcome of a buy-now purchase.
// FinalPrice carries the flat 1% buy-now premium; the commission fields are
// computed from the raw buy-now price.
type AuctionWinner struct {
	ID                uint64        `gorm:"primaryKey;autoIncrement"`
	AuctionPropertyID uint64        `gorm:"column:auction_property_id;index;not null"`
	UserID            string        `gorm:"column:user_id;size:128;index;not null"`
	WinningBid        int64         `gorm:"column:winning_bid;not null"`
	FinalPrice        float64       `gorm:"column:final_price;not null"`
	CommissionAmount  float64       `gorm:"column:commission_amount;not null"`
	DeveloperShare    float64       `gorm:"column:developer_share;not null"`
	PlatformShare     float64       `gorm:"column:platform_share;not null"`
	PaymentStatus     PaymentStatus `gorm:"column:payment_status;size:32;not null"`
	CreatedAt         time.Time     `gorm:"autoCreateTime"`
}

func (AuctionWinner) TableName() string {
	return "auction_winners"
}
