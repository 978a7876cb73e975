package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/propbid/auction-backend/internal/config"
	"github.com/propbid/auction-backend/internal/db"
	"github.com/propbid/auction-backend/internal/repository"
	"github.com/propbid/auction-backend/internal/service"
)

// The sweeper is the auction lifecycle timer: it promotes auctions from
// preview to live and from live to ended as their windows pass. It runs as
// its own process so the API stays purely request-response.
func main() {
	if err := run(); err != nil {
		log.Fatalf("sweeper stopped: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return err
	}

	interval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil || interval <= 0 {
		interval = 30 * time.Second
	}

	auctionRepo := repository.NewAuctionRepository(conn)
	eventRepo := repository.NewEventRepository(conn)
	svc := service.NewLifecycleService(auctionRepo, eventRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("sweeping every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		started, ended, err := svc.Sweep(ctx)
		if err != nil {
			log.Printf("sweep error: %v", err)
		}
		if len(started) > 0 || len(ended) > 0 {
			log.Printf("sweep started=%d ended=%d", len(started), len(ended))
		}
		select {
		case <-ctx.Done():
			log.Printf("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}
