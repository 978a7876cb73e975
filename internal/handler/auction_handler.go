package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/propbid/auction-backend/internal/model"
	"github.com/propbid/auction-backend/internal/service"
)

type AuctionHandler struct {
	svc service.AuctionService
}

func NewAuctionHandler(svc service.AuctionService) *AuctionHandler {
	return &AuctionHandler{svc: svc}
}

type AuctionResponse struct {
	ID             uint64   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	PreviewStart   string   `json:"previewStart"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	ReservePrice   int64    `json:"reservePrice"`
	BuyNowPrice    *int64   `json:"buyNowPrice,omitempty"`
	CurrentBid     int64    `json:"currentBid"`
	BidCount       uint     `json:"bidCount"`
	Status         string   `json:"status"`
	CommissionRate float64  `json:"commissionRate"`
	IsReserveMet   bool     `json:"isReserveMet"`
	Winner         *string  `json:"winner,omitempty"`
	FinalPrice     *float64 `json:"finalPrice,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

type AuctionListResponse struct {
	Auctions []AuctionResponse `json:"auctions"`
	Total    int64             `json:"total"`
}

type createAuctionRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	PreviewStart   string  `json:"previewStart"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	ReservePrice   int64   `json:"reservePrice"`
	BuyNowPrice    *int64  `json:"buyNowPrice"`
	CommissionRate float64 `json:"commissionRate"`
}

func (h *AuctionHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized"))
	}
	var req createAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid request body"))
	}
	previewStart, err := time.Parse(time.RFC3339, req.PreviewStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("previewStart must be RFC3339"))
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("startTime must be RFC3339"))
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("endTime must be RFC3339"))
	}
	a, err := h.svc.Create(c.Request().Context(), service.CreateAuctionInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		PreviewStart:   previewStart,
		StartTime:      startTime,
		EndTime:        endTime,
		ReservePrice:   req.ReservePrice,
		BuyNowPrice:    req.BuyNowPrice,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
	}
	return c.JSON(http.StatusCreated, toAuctionResponse(a, nil))
}

func (h *AuctionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid auction id"))
	}
	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAuctionNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("Auction not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch auction"))
	}
	return c.JSON(http.StatusOK, toAuctionResponse(detail.Auction, detail.Winner))
}

func (h *AuctionHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	status := model.AuctionStatus(c.QueryParam("status"))
	auctions, total, err := h.svc.List(c.Request().Context(), status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch auctions"))
	}
	resp := AuctionListResponse{
		Auctions: make([]AuctionResponse, 0, len(auctions)),
		Total:    total,
	}
	for i := range auctions {
		resp.Auctions = append(resp.Auctions, toAuctionResponse(&auctions[i], nil))
	}
	return c.JSON(http.StatusOK, resp)
}

type eventRow struct {
	ID        uint64 `json:"id"`
	EventType string `json:"event_type"`
	EventData string `json:"event_data"`
	CreatedAt string `json:"created_at"`
}

type EventListResponse struct {
	Events []eventRow `json:"events"`
}

func (h *AuctionHandler) ListEvents(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid auction id"))
	}
	events, err := h.svc.ListEvents(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAuctionNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("Auction not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch events"))
	}
	resp := EventListResponse{Events: make([]eventRow, 0, len(events))}
	for i := range events {
		resp.Events = append(resp.Events, eventRow{
			ID:        events[i].ID,
			EventType: events[i].EventType,
			EventData: events[i].EventData,
			CreatedAt: events[i].CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func toAuctionResponse(a *model.AuctionProperty, w *model.AuctionWinner) AuctionResponse {
	resp := AuctionResponse{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Location:       a.Location,
		PreviewStart:   a.PreviewStart.Format(time.RFC3339),
		StartTime:      a.StartTime.Format(time.RFC3339),
		EndTime:        a.EndTime.Format(time.RFC3339),
		ReservePrice:   a.ReservePrice,
		BuyNowPrice:    a.BuyNowPrice,
		CurrentBid:     a.CurrentBid,
		BidCount:       a.BidCount,
		Status:         string(a.Status),
		CommissionRate: a.CommissionRate,
		IsReserveMet:   a.BidCount > 0 && a.CurrentBid >= a.ReservePrice,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
	if w != nil {
		resp.Winner = &w.UserID
		resp.FinalPrice = &w.FinalPrice
	}
	return resp
}
