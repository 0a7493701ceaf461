package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalCost(t *testing.T) {
	// 2h at rate 25 with equipment at 5 and 2 per hour
	cost := TotalCost(25, 2, []float64{5, 2}, 0)
	assert.Equal(t, 64.00, cost)
}

func TestTotalCostWithDiscount(t *testing.T) {
	cost := TotalCost(25, 2, []float64{5, 2}, 20)
	assert.Equal(t, 48.00, cost)

	// VIP discount
	cost = TotalCost(25, 2, []float64{5, 2}, 30)
	assert.Equal(t, 44.80, cost)
}

func TestTotalCostNoEquipment(t *testing.T) {
	cost := TotalCost(50, 1.5, nil, 0)
	assert.Equal(t, 75.00, cost)
}

func TestTotalCostClampsAtZero(t *testing.T) {
	cost := TotalCost(10, 1, nil, 150)
	assert.Equal(t, 0.00, cost)
}

func TestTotalCostRounding(t *testing.T) {
	// 3 * 9.99 * 0.85 = 25.4745 -> 25.47
	cost := TotalCost(9.99, 3, nil, 15)
	assert.Equal(t, 25.47, cost)
}

func TestRefundPercentTiers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		start    time.Time
		expected float64
	}{
		{"72h before", now.Add(72 * time.Hour), 100},
		{"exactly 48h", now.Add(48 * time.Hour), 100},
		{"36h before", now.Add(36 * time.Hour), 50},
		{"exactly 24h", now.Add(24 * time.Hour), 50},
		{"18h before", now.Add(18 * time.Hour), 25},
		{"exactly 12h", now.Add(12 * time.Hour), 25},
		{"2h before", now.Add(2 * time.Hour), 0},
		{"already started", now.Add(-time.Hour), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RefundPercent(now, tc.start))
		})
	}
}
