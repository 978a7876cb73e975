package service

import (
	"context"
	"time"

	"github.com/propbid/auction-backend/internal/model"
	"github.com/propbid/auction-backend/internal/repository"
)

// LifecycleService moves auctions through preview -> live -> ended based on
// wall-clock time. It runs in its own process (cmd/sweeper); the API only
// ever checks status, it never transitions it.
type LifecycleService interface {
	Sweep(ctx context.Context) (started, ended []uint64, err error)
}

type lifecycleService struct {
	auctionRepo repository.AuctionRepository
	eventRepo   repository.EventRepository
	now         func() time.Time
}

func NewLifecycleService(auctionRepo repository.AuctionRepository, eventRepo repository.EventRepository) LifecycleService {
	return &lifecycleService{
		auctionRepo: auctionRepo,
		eventRepo:   eventRepo,
		now:         time.Now,
	}
}

func (s *lifecycleService) Sweep(ctx context.Context) ([]uint64, []uint64, error) {
	now := s.now()
	started, err := s.auctionRepo.StartDue(ctx, now)
	if err != nil {
		return started, nil, err
	}
	for _, id := range started {
		s.append(ctx, id, model.EventAuctionStarted, now)
	}
	ended, err := s.auctionRepo.EndDue(ctx, now)
	if err != nil {
		return started, ended, err
	}
	for _, id := range ended {
		s.append(ctx, id, model.EventAuctionEnded, now)
	}
	return started, ended, nil
}

func (s *lifecycleService) append(ctx context.Context, auctionID uint64, eventType string, now time.Time) {
	_ = s.eventRepo.Append(ctx, &model.AuctionEvent{
		AuctionPropertyID: auctionID,
		EventType:         eventType,
		EventData:         marshalEventData(map[string]interface{}{"at": now}),
	})
}
