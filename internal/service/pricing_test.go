package service

import "testing"

func TestMinimumIncrement(t *testing.T) {
	tests := []struct {
		name       string
		currentBid int64
		want       int64
	}{
		{"zero", 0, 1_000},
		{"below first boundary", 99_999, 1_000},
		{"at first boundary", 100_000, 5_000},
		{"below second boundary", 499_999, 5_000},
		{"at second boundary", 500_000, 10_000},
		{"below third boundary", 999_999, 10_000},
		{"at third boundary", 1_000_000, 25_000},
		{"above third boundary", 5_000_000, 25_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinimumIncrement(tt.currentBid); got != tt.want {
				t.Fatalf("got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestMinimumBid(t *testing.T) {
	if got := MinimumBid(95_000); got != 96_000 {
		t.Fatalf("got=%d want=96000", got)
	}
	if got := MinimumBid(100_000); got != 105_000 {
		t.Fatalf("got=%d want=105000", got)
	}
}

func TestSplitCommission(t *testing.T) {
	split := SplitCommission(1_000_000, 800_000, 0.05)
	if split.Overprice != 200_000 {
		t.Fatalf("overprice=%d want=200000", split.Overprice)
	}
	if split.PlatformCommission != 10_000 {
		t.Fatalf("platform=%v want=10000", split.PlatformCommission)
	}
	if split.DeveloperShare != 14_000 {
		t.Fatalf("developer=%v want=14000", split.DeveloperShare)
	}
	if split.TotalCommission != 24_000 {
		t.Fatalf("total=%v want=24000", split.TotalCommission)
	}
}

func TestSplitCommissionBelowReserve(t *testing.T) {
	split := SplitCommission(700_000, 800_000, 0.05)
	if split.Overprice != 0 || split.TotalCommission != 0 {
		t.Fatalf("overprice=%d total=%v want zero", split.Overprice, split.TotalCommission)
	}
}

func TestFinalPrice(t *testing.T) {
	if got := FinalPrice(1_000_000); got != 1_010_000 {
		t.Fatalf("got=%v want=1010000", got)
	}
}
