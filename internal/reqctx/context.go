package reqctx

import "context"

type ctxKey string

const (
	keyRID       ctxKey = "req_rid"
	keyAuctionID ctxKey = "req_auction_id"
)

// WithRID stores the correlation id for request-scoped logs.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithAuctionID stores the auction id for request-scoped logs.
func WithAuctionID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyAuctionID, id)
}

// AuctionID returns the auction id if present.
func AuctionID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyAuctionID).(uint64)
	return v
}
