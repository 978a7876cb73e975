package model

import "time"

const (
	EventAuctionCreated = "auction_created"
	EventAuctionStarted = "auction_started"
	EventAuctionEnded   = "auction_ended"
	EventBidPlaced      = "bid_placed"
	EventBuyNowPurchase = "buy_now_purchase"
)

// AuctionEvent is an append-only audit row. Rows are never updated or
// deleted; EventData holds a JSON document.
type AuctionEvent struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	AuctionPropertyID uint64    `gorm:"column:auction_property_id;index;not null"`
	EventType         string    `gorm:"column:event_type;size:64;not null"`
	EventData         string    `gorm:"column:event_data;type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (AuctionEvent) TableName() string {
	return "auction_events"
}
