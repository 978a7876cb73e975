package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/propbid/auction-backend/internal/ai"
	"github.com/propbid/auction-backend/internal/reqctx"
	"github.com/propbid/auction-backend/internal/repository"
	"gorm.io/gorm"
)

type AppraisalHandler struct {
	auctionRepo repository.AuctionRepository
	client      *ai.AppraisalClient
}

func NewAppraisalHandler(auctionRepo repository.AuctionRepository, client *ai.AppraisalClient) *AppraisalHandler {
	return &AppraisalHandler{auctionRepo: auctionRepo, client: client}
}

type AppraisalResponse struct {
	AuctionID uint64  `json:"auctionId"`
	Estimate  float64 `json:"estimate"`
}

func (h *AppraisalHandler) AppraiseProperty(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized"))
	}
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid auction id"))
	}
	auction, err := h.auctionRepo.FindByID(c.Request().Context(), auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("Auction not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch auction"))
	}
	ctx := reqctx.WithRID(c.Request().Context(), uuid.NewString())
	ctx = reqctx.WithAuctionID(ctx, auctionID)
	estimate, err := h.client.Estimate(ctx, auction.Title, auction.Description, auction.Location)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse("Failed to appraise property"))
	}
	return c.JSON(http.StatusOK, AppraisalResponse{AuctionID: auctionID, Estimate: estimate})
}
