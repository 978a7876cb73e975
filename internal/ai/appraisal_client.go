package ai

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/propbid/auction-backend/internal/reqctx"
	"google.golang.org/genai"
)

type AppraisalClient struct {
	model      string
	httpClient *http.Client
}

func NewAppraisalClient(httpClient *http.Client) *AppraisalClient {
	model := os.Getenv("GEMINI_APPRAISAL_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &AppraisalClient{model: model, httpClient: httpClient}
}

// Estimate takes listing text, calls Gemini, and returns an estimated market
// value in whole currency units.
func (c *AppraisalClient) Estimate(ctx context.Context, title, description, location string) (float64, error) {
	rid := reqctx.RID(ctx)
	auctionID := reqctx.AuctionID(ctx)
	start := time.Now()
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Printf("[appraise] rid=%s auction=%d stage=client_init err=%v", rid, auctionID, err)
		return 0, err
	}

	prompt := `You are an appraiser estimating the market value of a property listed on a real-estate marketplace.
From the title, description, and location, estimate a single fair market value in whole currency units.
The final answer must be exactly one number, for example: 850000
Do not output any explanation, symbols, line breaks, or whitespace around it.
If the listing gives too little to estimate, return 0.`

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromText(fmt.Sprintf("Title: %s\nDescription: %s\nLocation: %s", title, description, location)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	genStart := time.Now()
	log.Printf("[appraise] rid=%s auction=%d stage=gemini_start model=%s", rid, auctionID, c.model)
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[appraise] rid=%s auction=%d stage=gemini_fail model=%s err=%v", rid, auctionID, c.model, err)
		return 0, fmt.Errorf("gemini generate: %w", err)
	}
	genDur := time.Since(genStart)
	rawText := res.Text()
	val, unit, err := ParseEstimateWithUnit(rawText)
	if err != nil {
		text := strings.ReplaceAll(rawText, "\n", " ")
		if len(text) > 80 {
			text = text[:80]
		}
		log.Printf("[appraise] rid=%s auction=%d stage=parse_fail len=%d text=%q err=%v", rid, auctionID, len(rawText), text, err)
		return 0, err
	}
	log.Printf("[appraise] rid=%s auction=%d stage=parse_ok value=%.2f unit=%s genMs=%d totalMs=%d", rid, auctionID, val, unit, genDur.Milliseconds(), time.Since(start).Milliseconds())
	return val, nil
}
