package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/propbid/auction-backend/internal/config"
	"github.com/propbid/auction-backend/internal/db"
	"github.com/propbid/auction-backend/internal/model"
	"gorm.io/gorm"
)

type seedAuction struct {
	Title          string
	Description    string
	Location       string
	ReservePrice   int64
	BuyNowPrice    *int64
	CommissionRate float64
	StartIn        time.Duration
	Duration       time.Duration
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.AuctionProperty{},
		&model.Bid{},
		&model.AuctionWinner{},
		&model.AuctionEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("auctions already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	now := time.Now()
	inserted := 0
	for _, s := range buildSeedAuctions() {
		start := now.Add(s.StartIn)
		a := &model.AuctionProperty{
			Title:          s.Title,
			Description:    s.Description,
			Location:       s.Location,
			PreviewStart:   start.Add(-24 * time.Hour),
			StartTime:      start,
			EndTime:        start.Add(s.Duration),
			ReservePrice:   s.ReservePrice,
			BuyNowPrice:    s.BuyNowPrice,
			Status:         model.AuctionStatusPreview,
			CommissionRate: s.CommissionRate,
		}
		if s.StartIn <= 0 {
			a.Status = model.AuctionStatusLive
		}
		if err := gdb.WithContext(ctx).Create(a).Error; err != nil {
			return fmt.Errorf("insert auction %q: %w", s.Title, err)
		}
		inserted++
	}
	log.Printf("seeded %d auctions", inserted)
	return nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	var count int64
	if err := gdb.WithContext(ctx).Model(&model.AuctionProperty{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count auctions: %w", err)
	}
	return count == 0, nil
}

func buildSeedAuctions() []seedAuction {
	buyNow := func(v int64) *int64 { return &v }
	return []seedAuction{
		{
			Title:          "3BR apartment, New Cairo, Fifth Settlement",
			Description:    "165 sqm, semi-finished, garden view, second floor.",
			Location:       "New Cairo",
			ReservePrice:   800_000,
			BuyNowPrice:    buyNow(1_000_000),
			CommissionRate: 0.05,
			StartIn:        -1 * time.Hour,
			Duration:       72 * time.Hour,
		},
		{
			Title:          "Studio overlooking the Nile, Maadi",
			Description:    "58 sqm, fully furnished, ninth floor, river view.",
			Location:       "Maadi",
			ReservePrice:   450_000,
			CommissionRate: 0.04,
			StartIn:        24 * time.Hour,
			Duration:       48 * time.Hour,
		},
		{
			Title:          "Beach chalet, North Coast, Marassi",
			Description:    "95 sqm, two bedrooms, five minutes from the beach.",
			Location:       "North Coast",
			ReservePrice:   1_200_000,
			BuyNowPrice:    buyNow(1_600_000),
			CommissionRate: 0.06,
			StartIn:        48 * time.Hour,
			Duration:       96 * time.Hour,
		},
	}
}
