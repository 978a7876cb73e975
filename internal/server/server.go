package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/propbid/auction-backend/internal/ai"
	"github.com/propbid/auction-backend/internal/handler"
	appmw "github.com/propbid/auction-backend/internal/middleware"
	"github.com/propbid/auction-backend/internal/repository"
	"github.com/propbid/auction-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e           *echo.Echo
	auctionRepo repository.AuctionRepository
	bidRepo     repository.BidRepository
	eventRepo   repository.EventRepository
	winnerRepo  repository.WinnerRepository
	sha         string
	build       string
}

func New(db *gorm.DB, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "x-user-id"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	auctionRepo := repository.NewAuctionRepository(db)
	bidRepo := repository.NewBidRepository(db)
	eventRepo := repository.NewEventRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)

	auctionSvc := service.NewAuctionService(auctionRepo, bidRepo, eventRepo, winnerRepo)
	auctionHandler := handler.NewAuctionHandler(auctionSvc)
	bidHandler := handler.NewBidHandler(auctionSvc)
	appraisalHandler := handler.NewAppraisalHandler(auctionRepo, ai.NewAppraisalClient(nil))

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	if authMw != nil {
		e.POST("/auctions", auctionHandler.Create, authMw.RequireAuth)
		e.POST("/auctions/:id/bid", bidHandler.PlaceBid, authMw.RequireAuth)
		e.POST("/auctions/:id/buy-now", bidHandler.BuyNow, authMw.RequireAuth)
		e.POST("/auctions/:id/appraise", appraisalHandler.AppraiseProperty, authMw.RequireAuth)
	} else {
		e.POST("/auctions", auctionHandler.Create, appmw.HeaderIdentity)
		e.POST("/auctions/:id/bid", bidHandler.PlaceBid, appmw.HeaderIdentity)
		e.POST("/auctions/:id/buy-now", bidHandler.BuyNow, appmw.HeaderIdentity)
		e.POST("/auctions/:id/appraise", appraisalHandler.AppraiseProperty, appmw.HeaderIdentity)
	}
	e.GET("/auctions", auctionHandler.List)
	e.GET("/auctions/:id", auctionHandler.Get)
	e.GET("/auctions/:id/bid", bidHandler.ListBids)
	e.GET("/auctions/:id/events", auctionHandler.ListEvents)

	return &Server{
		e:           e,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		eventRepo:   eventRepo,
		winnerRepo:  winnerRepo,
		sha:         sha,
		build:       buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	if s.auctionRepo != nil {
		s.auctionRepo.SetDB(db)
	}
	if s.bidRepo != nil {
		s.bidRepo.SetDB(db)
	}
	if s.eventRepo != nil {
		s.eventRepo.SetDB(db)
	}
	if s.winnerRepo != nil {
		s.winnerRepo.SetDB(db)
	}
}
