package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/propbid/auction-backend/internal/model"
	"github.com/propbid/auction-backend/internal/repository"
	"gorm.io/gorm"
)

type fakeAuctionRepo struct {
	auctions     map[uint64]*model.AuctionProperty
	conflictHits int // number of ApplyBid calls that report zero rows
	purchases    []repository.BuyNowPurchase
}

func newFakeAuctionRepo(auctions ...*model.AuctionProperty) *fakeAuctionRepo {
	r := &fakeAuctionRepo{auctions: map[uint64]*model.AuctionProperty{}}
	for _, a := range auctions {
		r.auctions[a.ID] = a
	}
	return r
}

func (r *fakeAuctionRepo) Create(ctx context.Context, a *model.AuctionProperty) error {
	a.ID = uint64(len(r.auctions) + 1)
	r.auctions[a.ID] = a
	return nil
}

func (r *fakeAuctionRepo) FindByID(ctx context.Context, id uint64) (*model.AuctionProperty, error) {
	a, ok := r.auctions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAuctionRepo) List(ctx context.Context, status model.AuctionStatus, limit, offset int) ([]model.AuctionProperty, int64, error) {
	var list []model.AuctionProperty
	for _, a := range r.auctions {
		if status == "" || a.Status == status {
			list = append(list, *a)
		}
	}
	return list, int64(len(list)), nil
}

func (r *fakeAuctionRepo) ApplyBid(ctx context.Context, auctionID uint64, expectedBidCount uint, amount int64) (int64, error) {
	if r.conflictHits > 0 {
		r.conflictHits--
		return 0, nil
	}
	a, ok := r.auctions[auctionID]
	if !ok || a.BidCount != expectedBidCount || a.Status != model.AuctionStatusLive {
		return 0, nil
	}
	a.CurrentBid = amount
	a.BidCount++
	return 1, nil
}

func (r *fakeAuctionRepo) CompleteBuyNow(ctx context.Context, p repository.BuyNowPurchase) error {
	a, ok := r.auctions[p.AuctionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if a.Status != model.AuctionStatusPreview && a.Status != model.AuctionStatusLive {
		return repository.ErrConflict
	}
	a.Status = model.AuctionStatusSold
	a.CurrentBid = p.Amount
	a.BidCount++
	a.EndTime = p.EndedAt
	r.purchases = append(r.purchases, p)
	return nil
}

func (r *fakeAuctionRepo) StartDue(ctx context.Context, now time.Time) ([]uint64, error) {
	var ids []uint64
	for _, a := range r.auctions {
		if a.Status == model.AuctionStatusPreview && !a.StartTime.After(now) {
			a.Status = model.AuctionStatusLive
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r *fakeAuctionRepo) EndDue(ctx context.Context, now time.Time) ([]uint64, error) {
	var ids []uint64
	for _, a := range r.auctions {
		if a.Status == model.AuctionStatusLive && !a.EndTime.After(now) {
			a.Status = model.AuctionStatusEnded
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r *fakeAuctionRepo) SetDB(db *gorm.DB) {}

type fakeBidRepo struct {
	bids   []*model.Bid
	nextID uint64
}

func (r *fakeBidRepo) Create(ctx context.Context, b *model.Bid) error {
	r.nextID++
	b.ID = r.nextID
	r.bids = append(r.bids, b)
	return nil
}

func (r *fakeBidRepo) Delete(ctx context.Context, id uint64) error {
	for i, b := range r.bids {
		if b.ID == id {
			r.bids = append(r.bids[:i], r.bids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeBidRepo) DemoteOthers(ctx context.Context, auctionID, winningBidID uint64) error {
	for _, b := range r.bids {
		if b.AuctionPropertyID == auctionID && b.ID != winningBidID && b.IsWinning {
			b.IsWinning = false
			b.Status = model.BidStatusOutbid
		}
	}
	return nil
}

func (r *fakeBidRepo) ListByAuction(ctx context.Context, auctionID uint64, limit int) ([]model.Bid, error) {
	var list []model.Bid
	for i := len(r.bids) - 1; i >= 0 && len(list) < limit; i-- {
		if r.bids[i].AuctionPropertyID == auctionID {
			list = append(list, *r.bids[i])
		}
	}
	return list, nil
}

func (r *fakeBidRepo) SetDB(db *gorm.DB) {}

type fakeEventRepo struct {
	events []*model.AuctionEvent
}

func (r *fakeEventRepo) Append(ctx context.Context, e *model.AuctionEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) ListByAuction(ctx context.Context, auctionID uint64, limit int) ([]model.AuctionEvent, error) {
	var list []model.AuctionEvent
	for _, e := range r.events {
		if e.AuctionPropertyID == auctionID {
			list = append(list, *e)
		}
	}
	return list, nil
}

func (r *fakeEventRepo) SetDB(db *gorm.DB) {}

type fakeWinnerRepo struct {
	winners []*model.AuctionWinner
}

func (r *fakeWinnerRepo) FindByAuction(ctx context.Context, auctionID uint64) (*model.AuctionWinner, error) {
	for _, w := range r.winners {
		if w.AuctionPropertyID == auctionID {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWinnerRepo) SetDB(db *gorm.DB) {}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func liveAuction(id uint64) *model.AuctionProperty {
	buyNow := int64(1_000_000)
	return &model.AuctionProperty{
		ID:             id,
		Title:          "test auction",
		PreviewStart:   testNow.Add(-48 * time.Hour),
		StartTime:      testNow.Add(-1 * time.Hour),
		EndTime:        testNow.Add(24 * time.Hour),
		ReservePrice:   90_000,
		BuyNowPrice:    &buyNow,
		CurrentBid:     95_000,
		BidCount:       3,
		Status:         model.AuctionStatusLive,
		CommissionRate: 0.05,
	}
}

func newTestService(auctionRepo *fakeAuctionRepo) (*auctionService, *fakeBidRepo, *fakeEventRepo, *fakeWinnerRepo) {
	bidRepo := &fakeBidRepo{}
	eventRepo := &fakeEventRepo{}
	winnerRepo := &fakeWinnerRepo{}
	svc := &auctionService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		eventRepo:   eventRepo,
		winnerRepo:  winnerRepo,
		now:         func() time.Time { return testNow },
	}
	return svc, bidRepo, eventRepo, winnerRepo
}

func TestPlaceBidRejections(t *testing.T) {
	notStarted := liveAuction(2)
	notStarted.StartTime = testNow.Add(time.Hour)
	ended := liveAuction(3)
	ended.EndTime = testNow.Add(-time.Minute)
	previewOnly := liveAuction(4)
	previewOnly.Status = model.AuctionStatusPreview
	highReserve := liveAuction(5)
	highReserve.ReservePrice = 500_000
	highReserve.CurrentBid = 445_000

	tests := []struct {
		name      string
		auctionID uint64
		amount    int64
		wantErr   error
	}{
		{"non-positive amount", 1, 0, ErrInvalidAmount},
		{"negative amount", 1, -5, ErrInvalidAmount},
		{"unknown auction", 99, 96_000, ErrAuctionNotFound},
		{"not started", 2, 96_000, ErrAuctionNotStarted},
		{"already ended", 3, 96_000, ErrAuctionEnded},
		{"status not live", 4, 96_000, ErrAuctionNotAcceptingBids},
		{"below reserve", 5, 450_000, ErrReserveNotMet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAuctionRepo(liveAuction(1), notStarted, ended, previewOnly, highReserve)
			svc, bidRepo, _, _ := newTestService(repo)
			_, err := svc.PlaceBid(context.Background(), tt.auctionID, "user-1", tt.amount, nil, RequestMeta{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
			if len(bidRepo.bids) != 0 {
				t.Fatalf("rejection must not write bids, found %d", len(bidRepo.bids))
			}
		})
	}
}

func TestPlaceBidTooLowReportsMinimum(t *testing.T) {
	// increment below 100k is 1000, so 95000 -> minimum 96000
	repo := newFakeAuctionRepo(liveAuction(1))
	svc, _, _, _ := newTestService(repo)

	_, err := svc.PlaceBid(context.Background(), 1, "user-1", 95_500, nil, RequestMeta{})
	var tooLow *BidTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatalf("err=%v want BidTooLowError", err)
	}
	if tooLow.MinimumBid != 96_000 {
		t.Fatalf("minimumBid=%d want=96000", tooLow.MinimumBid)
	}
	if tooLow.CurrentBid != 95_000 {
		t.Fatalf("currentBid=%d want=95000", tooLow.CurrentBid)
	}
}

func TestPlaceBidSuccess(t *testing.T) {
	repo := newFakeAuctionRepo(liveAuction(1))
	svc, bidRepo, eventRepo, _ := newTestService(repo)

	result, err := svc.PlaceBid(context.Background(), 1, "user-1", 96_000, nil, RequestMeta{IP: "10.0.0.1", UserAgent: "test"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !result.Bid.IsWinning || result.Bid.Amount != 96_000 {
		t.Fatalf("bid=%+v", result.Bid)
	}
	if result.CurrentBid != 96_000 || result.BidCount != 4 {
		t.Fatalf("currentBid=%d bidCount=%d", result.CurrentBid, result.BidCount)
	}
	if !result.IsReserveMet {
		t.Fatalf("reserve of 90000 should be met by 96000")
	}
	if repo.auctions[1].CurrentBid != 96_000 || repo.auctions[1].BidCount != 4 {
		t.Fatalf("auction not updated: %+v", repo.auctions[1])
	}
	if len(bidRepo.bids) != 1 {
		t.Fatalf("bids=%d want=1", len(bidRepo.bids))
	}
	if len(eventRepo.events) != 1 || eventRepo.events[0].EventType != model.EventBidPlaced {
		t.Fatalf("events=%+v", eventRepo.events)
	}
}

func TestPlaceBidSingleWinner(t *testing.T) {
	repo := newFakeAuctionRepo(liveAuction(1))
	svc, bidRepo, _, _ := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.PlaceBid(ctx, 1, "user-1", 96_000, nil, RequestMeta{}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	second, err := svc.PlaceBid(ctx, 1, "user-2", 97_000, nil, RequestMeta{})
	if err != nil {
		t.Fatalf("second bid: %v", err)
	}

	winners := 0
	for _, b := range bidRepo.bids {
		if b.IsWinning {
			winners++
			if b.ID != second.Bid.ID {
				t.Fatalf("winning bid is %d, want most recent %d", b.ID, second.Bid.ID)
			}
		} else if b.Status != model.BidStatusOutbid {
			t.Fatalf("demoted bid has status %q, want outbid", b.Status)
		}
	}
	if winners != 1 {
		t.Fatalf("winners=%d want exactly 1", winners)
	}
}

func TestPlaceBidRetriesOnConflict(t *testing.T) {
	repo := newFakeAuctionRepo(liveAuction(1))
	repo.conflictHits = 1
	svc, bidRepo, _, _ := newTestService(repo)

	result, err := svc.PlaceBid(context.Background(), 1, "user-1", 96_000, nil, RequestMeta{})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.CurrentBid != 96_000 {
		t.Fatalf("currentBid=%d", result.CurrentBid)
	}
	// the bid from the losing attempt must have been rolled back
	if len(bidRepo.bids) != 1 {
		t.Fatalf("bids=%d want=1 after rollback", len(bidRepo.bids))
	}
}

func TestPlaceBidConflictExhausted(t *testing.T) {
	repo := newFakeAuctionRepo(liveAuction(1))
	repo.conflictHits = maxBidAttempts
	svc, bidRepo, _, _ := newTestService(repo)

	_, err := svc.PlaceBid(context.Background(), 1, "user-1", 96_000, nil, RequestMeta{})
	if !errors.Is(err, ErrBidConflict) {
		t.Fatalf("err=%v want ErrBidConflict", err)
	}
	if len(bidRepo.bids) != 0 {
		t.Fatalf("all attempt bids must be rolled back, found %d", len(bidRepo.bids))
	}
}

func TestBuyNowUnavailable(t *testing.T) {
	a := liveAuction(1)
	a.BuyNowPrice = nil
	repo := newFakeAuctionRepo(a)
	svc, bidRepo, eventRepo, _ := newTestService(repo)

	_, err := svc.BuyNow(context.Background(), 1, "buyer-1", RequestMeta{})
	if !errors.Is(err, ErrBuyNowUnavailable) {
		t.Fatalf("err=%v want ErrBuyNowUnavailable", err)
	}
	if len(repo.purchases) != 0 || len(bidRepo.bids) != 0 || len(eventRepo.events) != 0 {
		t.Fatalf("rejection must perform no writes")
	}
}

func TestBuyNowSuccess(t *testing.T) {
	a := liveAuction(1)
	a.ReservePrice = 800_000
	endBefore := a.EndTime
	repo := newFakeAuctionRepo(a)
	svc, _, _, _ := newTestService(repo)

	result, err := svc.BuyNow(context.Background(), 1, "buyer-1", RequestMeta{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// overprice 200000 at 5% platform and fixed 7% developer
	if result.PlatformCommission != 10_000 {
		t.Fatalf("platform=%v want=10000", result.PlatformCommission)
	}
	if result.DeveloperShare != 14_000 {
		t.Fatalf("developer=%v want=14000", result.DeveloperShare)
	}
	if result.TotalCommission != 24_000 {
		t.Fatalf("total=%v want=24000", result.TotalCommission)
	}
	if result.FinalPrice != 1_010_000 {
		t.Fatalf("finalPrice=%v want=1010000", result.FinalPrice)
	}
	if repo.auctions[1].Status != model.AuctionStatusSold {
		t.Fatalf("status=%q want=sold", repo.auctions[1].Status)
	}
	if !repo.auctions[1].EndTime.Equal(testNow) || !repo.auctions[1].EndTime.Before(endBefore) {
		t.Fatalf("end_time=%v must be shortened to purchase time %v", repo.auctions[1].EndTime, testNow)
	}
	if len(repo.purchases) != 1 {
		t.Fatalf("purchases=%d want=1", len(repo.purchases))
	}
	p := repo.purchases[0]
	if p.Bid.Status != model.BidStatusWinning || !p.Bid.IsWinning {
		t.Fatalf("purchase bid=%+v", p.Bid)
	}
	if p.Winner.FinalPrice != 1_010_000 || p.Winner.CommissionAmount != 24_000 {
		t.Fatalf("winner=%+v", p.Winner)
	}
	if p.Event.EventType != model.EventBuyNowPurchase {
		t.Fatalf("event=%+v", p.Event)
	}
}

func TestBuyNowRejectsWrongStatus(t *testing.T) {
	a := liveAuction(1)
	a.Status = model.AuctionStatusEnded
	repo := newFakeAuctionRepo(a)
	svc, _, _, _ := newTestService(repo)

	_, err := svc.BuyNow(context.Background(), 1, "buyer-1", RequestMeta{})
	if !errors.Is(err, ErrAuctionNotAcceptingPurchases) {
		t.Fatalf("err=%v want ErrAuctionNotAcceptingPurchases", err)
	}
}

func TestBuyNowAllowedDuringPreview(t *testing.T) {
	a := liveAuction(1)
	a.Status = model.AuctionStatusPreview
	a.StartTime = testNow.Add(12 * time.Hour) // preview window: previewStart passed, start not yet
	repo := newFakeAuctionRepo(a)
	svc, _, _, _ := newTestService(repo)

	if _, err := svc.BuyNow(context.Background(), 1, "buyer-1", RequestMeta{}); err != nil {
		t.Fatalf("buy-now during preview should succeed, got %v", err)
	}
}

func TestListBidsUnknownAuction(t *testing.T) {
	repo := newFakeAuctionRepo()
	svc, _, _, _ := newTestService(repo)
	_, err := svc.ListBids(context.Background(), 42)
	if !errors.Is(err, ErrAuctionNotFound) {
		t.Fatalf("err=%v want ErrAuctionNotFound", err)
	}
}
