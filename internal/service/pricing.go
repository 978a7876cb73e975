package service

// Increment schedule for competitive bids. The step grows with the current
// price so late-stage bidding moves in meaningful amounts.
func MinimumIncrement(currentBid int64) int64 {
	switch {
	case currentBid < 100_000:
		return 1_000
	case currentBid < 500_000:
		return 5_000
	case currentBid < 1_000_000:
		return 10_000
	default:
		return 25_000
	}
}

// MinimumBid is the lowest amount the next bid may carry.
func MinimumBid(currentBid int64) int64 {
	return currentBid + MinimumIncrement(currentBid)
}

// developerShareRate is the fixed cut of the over-reserve proceeds paid to
// the property developer. Not configurable per auction.
const developerShareRate = 0.07

// buyNowPremiumRate is the flat premium recorded on the winner's final price.
// It is intentionally absent from the commission basis; see DESIGN.md.
const buyNowPremiumRate = 0.01

type CommissionSplit struct {
	Overprice          int64
	PlatformCommission float64
	DeveloperShare     float64
	TotalCommission    float64
}

// SplitCommission divides the proceeds above reserve between the platform
// and the developer. Commission applies to the raw buy-now price.
func SplitCommission(price, reservePrice int64, commissionRate float64) CommissionSplit {
	overprice := price - reservePrice
	if overprice < 0 {
		overprice = 0
	}
	platform := float64(overprice) * commissionRate
	developer := float64(overprice) * developerShareRate
	return CommissionSplit{
		Overprice:          overprice,
		PlatformCommission: platform,
		DeveloperShare:     developer,
		TotalCommission:    platform + developer,
	}
}

// FinalPrice applies the buy-now premium recorded on the winner row.
func FinalPrice(price int64) float64 {
	return float64(price) * (1 + buyNowPremiumRate)
}
