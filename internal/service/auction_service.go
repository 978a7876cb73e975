package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/propbid/auction-backend/internal/model"
	"github.com/propbid/auction-backend/internal/reqctx"
	"github.com/propbid/auction-backend/internal/repository"
	"gorm.io/gorm"
)

// Validation and business-rule rejections, in the order PlaceBid applies them.
var (
	ErrInvalidAmount                = errors.New("invalid_amount")
	ErrAuctionNotFound              = errors.New("auction_not_found")
	ErrAuctionNotStarted            = errors.New("auction_not_started")
	ErrAuctionEnded                 = errors.New("auction_ended")
	ErrAuctionNotAcceptingBids      = errors.New("auction_not_accepting_bids")
	ErrReserveNotMet                = errors.New("reserve_not_met")
	ErrBuyNowUnavailable            = errors.New("buy_now_unavailable")
	ErrAuctionNotAcceptingPurchases = errors.New("auction_not_accepting_purchases")

	// ErrBidConflict means every optimistic attempt lost to a concurrent bid.
	ErrBidConflict = errors.New("bid_conflict")
)

// BidTooLowError carries the computed minimum so clients can retry with a
// corrected amount.
type BidTooLowError struct {
	MinimumBid int64
	CurrentBid int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low: minimum is %d", e.MinimumBid)
}

// maxBidAttempts bounds the optimistic validate-and-write cycle.
const maxBidAttempts = 3

// RequestMeta is audit-log material captured at the HTTP boundary.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type BidResult struct {
	Bid          *model.Bid
	CurrentBid   int64
	BidCount     uint
	IsReserveMet bool
}

type PurchaseResult struct {
	Amount             int64
	FinalPrice         float64
	PlatformCommission float64
	DeveloperShare     float64
	TotalCommission    float64
	PaymentStatus      model.PaymentStatus
	Status             model.AuctionStatus
	EndedAt            time.Time
	WinnerUserID       string
}

type AuctionDetail struct {
	Auction *model.AuctionProperty
	Winner  *model.AuctionWinner
}

type CreateAuctionInput struct {
	Title          string
	Description    string
	Location       string
	PreviewStart   time.Time
	StartTime      time.Time
	EndTime        time.Time
	ReservePrice   int64
	BuyNowPrice    *int64
	CommissionRate float64
}

type AuctionService interface {
	Create(ctx context.Context, in CreateAuctionInput) (*model.AuctionProperty, error)
	Get(ctx context.Context, id uint64) (*AuctionDetail, error)
	List(ctx context.Context, status model.AuctionStatus, limit, offset int) ([]model.AuctionProperty, int64, error)
	PlaceBid(ctx context.Context, auctionID uint64, userID string, amount int64, autoBidMax *int64, meta RequestMeta) (*BidResult, error)
	BuyNow(ctx context.Context, auctionID uint64, userID string, meta RequestMeta) (*PurchaseResult, error)
	ListBids(ctx context.Context, auctionID uint64) ([]model.Bid, error)
	ListEvents(ctx context.Context, auctionID uint64) ([]model.AuctionEvent, error)
}

type auctionService struct {
	auctionRepo repository.AuctionRepository
	bidRepo     repository.BidRepository
	eventRepo   repository.EventRepository
	winnerRepo  repository.WinnerRepository
	now         func() time.Time
}

func NewAuctionService(auctionRepo repository.AuctionRepository, bidRepo repository.BidRepository, eventRepo repository.EventRepository, winnerRepo repository.WinnerRepository) AuctionService {
	return &auctionService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		eventRepo:   eventRepo,
		winnerRepo:  winnerRepo,
		now:         time.Now,
	}
}

func (s *auctionService) Create(ctx context.Context, in CreateAuctionInput) (*model.AuctionProperty, error) {
	if in.Title == "" {
		return nil, errors.New("title is required")
	}
	if in.ReservePrice <= 0 {
		return nil, errors.New("reserve price must be positive")
	}
	if in.BuyNowPrice != nil && *in.BuyNowPrice < in.ReservePrice {
		return nil, errors.New("buy now price must not be below reserve")
	}
	if in.CommissionRate < 0 || in.CommissionRate > 1 {
		return nil, errors.New("commission rate must be a fraction")
	}
	if in.PreviewStart.After(in.StartTime) || !in.StartTime.Before(in.EndTime) {
		return nil, errors.New("auction window must satisfy preview <= start < end")
	}
	a := &model.AuctionProperty{
		Title:          in.Title,
		Description:    in.Description,
		Location:       in.Location,
		PreviewStart:   in.PreviewStart,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		ReservePrice:   in.ReservePrice,
		BuyNowPrice:    in.BuyNowPrice,
		Status:         model.AuctionStatusPreview,
		CommissionRate: in.CommissionRate,
	}
	if err := s.auctionRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, a.ID, model.EventAuctionCreated, map[string]interface{}{
		"reserve_price": a.ReservePrice,
		"start_time":    a.StartTime,
		"end_time":      a.EndTime,
	})
	return a, nil
}

func (s *auctionService) Get(ctx context.Context, id uint64) (*AuctionDetail, error) {
	a, err := s.auctionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	detail := &AuctionDetail{Auction: a}
	if a.Status == model.AuctionStatusSold {
		w, err := s.winnerRepo.FindByAuction(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Winner = w
	}
	return detail, nil
}

func (s *auctionService) List(ctx context.Context, status model.AuctionStatus, limit, offset int) ([]model.AuctionProperty, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.auctionRepo.List(ctx, status, limit, offset)
}

// PlaceBid runs the whole validate-and-write cycle optimistically: the
// auction update is conditional on the bid_count read during validation, and
// losing that write deletes the just-inserted bid and retries from scratch.
func (s *auctionService) PlaceBid(ctx context.Context, auctionID uint64, userID string, amount int64, autoBidMax *int64, meta RequestMeta) (*BidResult, error) {
	if userID == "" {
		return nil, errors.New("bidder is required")
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	for attempt := 0; attempt < maxBidAttempts; attempt++ {
		auction, err := s.auctionRepo.FindByID(ctx, auctionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAuctionNotFound
			}
			return nil, err
		}
		now := s.now()
		if now.Before(auction.StartTime) {
			return nil, ErrAuctionNotStarted
		}
		if now.After(auction.EndTime) {
			return nil, ErrAuctionEnded
		}
		if auction.Status != model.AuctionStatusLive {
			return nil, ErrAuctionNotAcceptingBids
		}
		minBid := MinimumBid(auction.CurrentBid)
		if amount < minBid {
			return nil, &BidTooLowError{MinimumBid: minBid, CurrentBid: auction.CurrentBid}
		}
		if amount < auction.ReservePrice {
			return nil, ErrReserveNotMet
		}

		bid := &model.Bid{
			AuctionPropertyID: auctionID,
			UserID:            userID,
			Amount:            amount,
			AutoBidMax:        autoBidMax,
			BidTime:           now,
			IsWinning:         true,
			Status:            model.BidStatusActive,
		}
		if err := s.bidRepo.Create(ctx, bid); err != nil {
			return nil, err
		}
		affected, err := s.auctionRepo.ApplyBid(ctx, auctionID, auction.BidCount, amount)
		if err != nil {
			s.rollbackBid(ctx, auctionID, bid.ID)
			return nil, err
		}
		if affected == 0 {
			// a concurrent bid won the conditional write
			s.rollbackBid(ctx, auctionID, bid.ID)
			continue
		}
		if err := s.bidRepo.DemoteOthers(ctx, auctionID, bid.ID); err != nil {
			return nil, err
		}
		s.appendEvent(ctx, auctionID, model.EventBidPlaced, map[string]interface{}{
			"previous_bid": auction.CurrentBid,
			"new_bid":      amount,
			"bid_count":    auction.BidCount + 1,
			"user_id":      userID,
			"ip":           meta.IP,
			"user_agent":   meta.UserAgent,
		})
		return &BidResult{
			Bid:          bid,
			CurrentBid:   amount,
			BidCount:     auction.BidCount + 1,
			IsReserveMet: amount >= auction.ReservePrice,
		}, nil
	}
	return nil, ErrBidConflict
}

// BuyNow settles the auction immediately. All writes happen in one
// transaction; a status recheck inside it rejects a concurrent sale.
func (s *auctionService) BuyNow(ctx context.Context, auctionID uint64, userID string, meta RequestMeta) (*PurchaseResult, error) {
	if userID == "" {
		return nil, errors.New("buyer is required")
	}
	auction, err := s.auctionRepo.FindByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	if auction.BuyNowPrice == nil {
		return nil, ErrBuyNowUnavailable
	}
	now := s.now()
	if now.Before(auction.PreviewStart) {
		return nil, ErrAuctionNotStarted
	}
	if now.After(auction.EndTime) {
		return nil, ErrAuctionEnded
	}
	if auction.Status != model.AuctionStatusPreview && auction.Status != model.AuctionStatusLive {
		return nil, ErrAuctionNotAcceptingPurchases
	}

	price := *auction.BuyNowPrice
	split := SplitCommission(price, auction.ReservePrice, auction.CommissionRate)
	finalPrice := FinalPrice(price)

	bid := &model.Bid{
		AuctionPropertyID: auctionID,
		UserID:            userID,
		Amount:            price,
		BidTime:           now,
		IsWinning:         true,
		Status:            model.BidStatusWinning,
	}
	winner := &model.AuctionWinner{
		AuctionPropertyID: auctionID,
		UserID:            userID,
		WinningBid:        price,
		FinalPrice:        finalPrice,
		CommissionAmount:  split.TotalCommission,
		DeveloperShare:    split.DeveloperShare,
		PlatformShare:     split.PlatformCommission,
		PaymentStatus:     model.PaymentStatusPending,
	}
	event := &model.AuctionEvent{
		AuctionPropertyID: auctionID,
		EventType:         model.EventBuyNowPurchase,
		EventData: marshalEventData(map[string]interface{}{
			"amount":              price,
			"final_price":         finalPrice,
			"platform_commission": split.PlatformCommission,
			"developer_share":     split.DeveloperShare,
			"total_commission":    split.TotalCommission,
			"user_id":             userID,
			"ip":                  meta.IP,
			"user_agent":          meta.UserAgent,
		}),
	}

	err = s.auctionRepo.CompleteBuyNow(ctx, repository.BuyNowPurchase{
		AuctionID: auctionID,
		Bid:       bid,
		Winner:    winner,
		Event:     event,
		Amount:    price,
		EndedAt:   now,
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrAuctionNotAcceptingPurchases
	}
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{
		Amount:             price,
		FinalPrice:         finalPrice,
		PlatformCommission: split.PlatformCommission,
		DeveloperShare:     split.DeveloperShare,
		TotalCommission:    split.TotalCommission,
		PaymentStatus:      winner.PaymentStatus,
		Status:             model.AuctionStatusSold,
		EndedAt:            now,
		WinnerUserID:       userID,
	}, nil
}

func (s *auctionService) ListBids(ctx context.Context, auctionID uint64) ([]model.Bid, error) {
	if _, err := s.auctionRepo.FindByID(ctx, auctionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return s.bidRepo.ListByAuction(ctx, auctionID, 50)
}

func (s *auctionService) ListEvents(ctx context.Context, auctionID uint64) ([]model.AuctionEvent, error) {
	if _, err := s.auctionRepo.FindByID(ctx, auctionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return s.eventRepo.ListByAuction(ctx, auctionID, 50)
}

// rollbackBid removes a bid whose auction update did not land. A failed
// rollback leaves an orphan row; the user still sees the original failure.
func (s *auctionService) rollbackBid(ctx context.Context, auctionID, bidID uint64) {
	if err := s.bidRepo.Delete(ctx, bidID); err != nil {
		log.Printf("[bid] rid=%s auction=%d stage=rollback_fail bid=%d err=%v", reqctx.RID(ctx), auctionID, bidID, err)
	}
}

// appendEvent is best-effort; the audit log must not fail the main flow.
func (s *auctionService) appendEvent(ctx context.Context, auctionID uint64, eventType string, data map[string]interface{}) {
	e := &model.AuctionEvent{
		AuctionPropertyID: auctionID,
		EventType:         eventType,
		EventData:         marshalEventData(data),
	}
	if err := s.eventRepo.Append(ctx, e); err != nil {
		log.Printf("[event] rid=%s auction=%d stage=append_fail type=%s err=%v", reqctx.RID(ctx), auctionID, eventType, err)
	}
}

func marshalEventData(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
