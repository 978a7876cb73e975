package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/propbid/auction-backend/internal/model"
	"github.com/propbid/auction-backend/internal/reqctx"
	"github.com/propbid/auction-backend/internal/service"
)

type BidHandler struct {
	svc service.AuctionService
}

func NewBidHandler(svc service.AuctionService) *BidHandler {
	return &BidHandler{svc: svc}
}

type placeBidRequest struct {
	Amount     int64  `json:"amount"`
	AutoBidMax *int64 `json:"auto_bid_max"`
}

type bidPayload struct {
	ID        uint64 `json:"id"`
	Amount    int64  `json:"amount"`
	BidTime   string `json:"bidTime"`
	IsWinning bool   `json:"isWinning"`
}

type bidAuctionPayload struct {
	CurrentBid   int64 `json:"currentBid"`
	BidCount     uint  `json:"bidCount"`
	IsReserveMet bool  `json:"isReserveMet"`
}

type PlaceBidResponse struct {
	Success bool              `json:"success"`
	Bid     bidPayload        `json:"bid"`
	Auction bidAuctionPayload `json:"auction"`
}

type bidRow struct {
	ID        uint64 `json:"id"`
	Amount    int64  `json:"amount"`
	BidTime   string `json:"bid_time"`
	IsWinning bool   `json:"is_winning"`
	Status    string `json:"status"`
}

type BidListResponse struct {
	Bids []bidRow `json:"bids"`
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized"))
	}
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid auction id"))
	}
	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid request body"))
	}
	ctx := reqctx.WithAuctionID(c.Request().Context(), auctionID)
	result, err := h.svc.PlaceBid(ctx, auctionID, uid, req.Amount, req.AutoBidMax, requestMeta(c))
	if err != nil {
		return bidError(c, err)
	}
	return c.JSON(http.StatusOK, PlaceBidResponse{
		Success: true,
		Bid: bidPayload{
			ID:        result.Bid.ID,
			Amount:    result.Bid.Amount,
			BidTime:   result.Bid.BidTime.Format(time.RFC3339),
			IsWinning: result.Bid.IsWinning,
		},
		Auction: bidAuctionPayload{
			CurrentBid:   result.CurrentBid,
			BidCount:     result.BidCount,
			IsReserveMet: result.IsReserveMet,
		},
	})
}

func (h *BidHandler) ListBids(c echo.Context) error {
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid auction id"))
	}
	bids, err := h.svc.ListBids(c.Request().Context(), auctionID)
	if err != nil {
		if errors.Is(err, service.ErrAuctionNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("Auction not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch bids"))
	}
	resp := BidListResponse{Bids: make([]bidRow, 0, len(bids))}
	for i := range bids {
		resp.Bids = append(resp.Bids, bidRow{
			ID:        bids[i].ID,
			Amount:    bids[i].Amount,
			BidTime:   bids[i].BidTime.Format(time.RFC3339),
			IsWinning: bids[i].IsWinning,
			Status:    string(bids[i].Status),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type purchasePayload struct {
	Amount             int64   `json:"amount"`
	FinalPrice         float64 `json:"finalPrice"`
	PlatformCommission float64 `json:"platformCommission"`
	DeveloperShare     float64 `json:"developerShare"`
	TotalCommission    float64 `json:"totalCommission"`
	PaymentStatus      string  `json:"paymentStatus"`
}

type buyNowAuctionPayload struct {
	Status     string  `json:"status"`
	FinalPrice float64 `json:"finalPrice"`
	Winner     string  `json:"winner"`
	EndTime    string  `json:"endTime"`
}

type BuyNowResponse struct {
	Success  bool                 `json:"success"`
	Purchase purchasePayload      `json:"purchase"`
	Auction  buyNowAuctionPayload `json:"auction"`
}

func (h *BidHandler) BuyNow(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized"))
	}
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid auction id"))
	}
	ctx := reqctx.WithAuctionID(c.Request().Context(), auctionID)
	result, err := h.svc.BuyNow(ctx, auctionID, uid, requestMeta(c))
	if err != nil {
		return buyNowError(c, err)
	}
	return c.JSON(http.StatusOK, BuyNowResponse{
		Success: true,
		Purchase: purchasePayload{
			Amount:             result.Amount,
			FinalPrice:         result.FinalPrice,
			PlatformCommission: result.PlatformCommission,
			DeveloperShare:     result.DeveloperShare,
			TotalCommission:    result.TotalCommission,
			PaymentStatus:      string(result.PaymentStatus),
		},
		Auction: buyNowAuctionPayload{
			Status:     string(model.AuctionStatusSold),
			FinalPrice: result.FinalPrice,
			Winner:     result.WinnerUserID,
			EndTime:    result.EndedAt.Format(time.RFC3339),
		},
	})
}

func bidError(c echo.Context, err error) error {
	var tooLow *service.BidTooLowError
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Bid amount must be a positive number"))
	case errors.Is(err, service.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("Auction not found"))
	case errors.Is(err, service.ErrAuctionNotStarted):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Auction has not started yet"))
	case errors.Is(err, service.ErrAuctionEnded):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Auction has ended"))
	case errors.Is(err, service.ErrAuctionNotAcceptingBids):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Auction is not accepting bids"))
	case errors.As(err, &tooLow):
		resp := NewErrorResponse("Bid is below the minimum increment")
		resp.MinimumBid = &tooLow.MinimumBid
		resp.CurrentBid = &tooLow.CurrentBid
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrReserveNotMet):
		resp := NewErrorResponse("Bid does not meet the reserve price")
		notMet := false
		resp.IsReserveMet = &notMet
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrBidConflict):
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to update auction"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to place bid"))
	}
}

func buyNowError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("Auction not found"))
	case errors.Is(err, service.ErrBuyNowUnavailable):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Buy now is not available for this auction"))
	case errors.Is(err, service.ErrAuctionNotStarted):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Auction has not started yet"))
	case errors.Is(err, service.ErrAuctionEnded):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Auction has ended"))
	case errors.Is(err, service.ErrAuctionNotAcceptingPurchases):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Auction is not accepting purchases"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to complete purchase"))
	}
}

// requestMeta captures the caller's address and agent for the audit log.
// c.RealIP honors x-forwarded-for and x-real-ip before the socket address.
func requestMeta(c echo.Context) service.RequestMeta {
	return service.RequestMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
