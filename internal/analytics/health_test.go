package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"homepulse/server/internal/models"
)

func TestScoreMarketHealth_NeutralBase(t *testing.T) {
	result := ScoreMarketHealth(HealthInputs{})

	assert.Equal(t, 50, result.Score)
	assert.Empty(t, result.Factors)
	assert.Equal(t, "Balanced Market", result.Status)
	assert.Equal(t, "balanced", result.Indicator)
}

func TestScoreMarketHealth_DOMToggleIsIndependent(t *testing.T) {
	base := HealthInputs{
		AvgListSaleRatio:       fptr(0.97),
		AnnualizedAppreciation: fptr(3.0),
	}

	fast := base
	fast.AvgDaysOnMarket = fptr(20)
	slow := base
	slow.AvgDaysOnMarket = fptr(200)

	fastResult := ScoreMarketHealth(fast)
	slowResult := ScoreMarketHealth(slow)

	// Fast-to-slow swings exactly 20 points: +10 removed, -10 added.
	assert.Equal(t, 20, fastResult.Score-slowResult.Score)
	assert.Contains(t, fastResult.Factors, "Fast-moving market (low DOM)")
	assert.Contains(t, slowResult.Factors, "Slow market (high DOM)")

	// Only the DOM factor changes between the two.
	assert.Equal(t, len(fastResult.Factors), len(slowResult.Factors))
	for _, f := range fastResult.Factors[1:] {
		assert.Contains(t, slowResult.Factors, f)
	}
}

func TestScoreMarketHealth_AllPositiveIsUnclamped(t *testing.T) {
	supply := 2.0
	result := ScoreMarketHealth(HealthInputs{
		AvgDaysOnMarket:        fptr(15),
		AvgListSaleRatio:       fptr(1.02),
		Inventory:              &models.InventorySnapshot{MonthsOfSupply: &supply, MarketType: models.MarketTypeSeller},
		AnnualizedAppreciation: fptr(12.0),
	})

	// 50 +10 +10 +15 +15: the composite is allowed past 100's neighborhood
	// and is never clamped.
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, "Hot Market", result.Status)
	assert.Equal(t, "seller_market", result.Indicator)
	assert.Len(t, result.Factors, 4)
}

func TestScoreMarketHealth_AllNegative(t *testing.T) {
	supply := 9.5
	result := ScoreMarketHealth(HealthInputs{
		AvgDaysOnMarket:        fptr(120),
		AvgListSaleRatio:       fptr(0.90),
		Inventory:              &models.InventorySnapshot{MonthsOfSupply: &supply, MarketType: models.MarketTypeBuyer},
		AnnualizedAppreciation: fptr(-8.0),
	})

	// 50 -10 -5 -10 -10 = 15
	assert.Equal(t, 15, result.Score)
	assert.Equal(t, "Buyer's Market", result.Status)
	assert.Equal(t, "buyer_market", result.Indicator)
}

func TestScoreMarketHealth_BalancedInventoryFactorWithoutScoreChange(t *testing.T) {
	supply := 4.5
	result := ScoreMarketHealth(HealthInputs{
		Inventory: &models.InventorySnapshot{MonthsOfSupply: &supply, MarketType: models.MarketTypeBalanced},
	})

	assert.Equal(t, 50, result.Score)
	assert.Contains(t, result.Factors, "Balanced inventory")
}

func TestScoreMarketHealth_RatioBandEdges(t *testing.T) {
	atList := ScoreMarketHealth(HealthInputs{AvgListSaleRatio: fptr(1.0)})
	assert.Equal(t, 60, atList.Score)

	betweenBands := ScoreMarketHealth(HealthInputs{AvgListSaleRatio: fptr(0.97)})
	assert.Equal(t, 50, betweenBands.Score)
	assert.Empty(t, betweenBands.Factors)

	belowList := ScoreMarketHealth(HealthInputs{AvgListSaleRatio: fptr(0.94)})
	assert.Equal(t, 45, belowList.Score)
}

func TestScoreMarketHealth_SummaryFollowsInventoryNotScore(t *testing.T) {
	// A seller-typed inventory with weak price signals: the numeric ladder
	// and the narrative may diverge, and the narrative wins no tiebreak.
	supply := 2.0
	result := ScoreMarketHealth(HealthInputs{
		AvgDaysOnMarket:        fptr(120),
		AvgListSaleRatio:       fptr(0.90),
		AnnualizedAppreciation: fptr(-8.0),
		Inventory:              &models.InventorySnapshot{MonthsOfSupply: &supply, MarketType: models.MarketTypeSeller},
	})

	assert.Equal(t, 40, result.Score) // 50 -10 -5 +15 -10
	assert.Equal(t, "Soft Market", result.Status)
	assert.Contains(t, result.Summary, "Sellers hold the advantage")
}

func TestBuildInventorySnapshot(t *testing.T) {
	snap := BuildInventorySnapshot(30, 5, 10)

	assert.Equal(t, 30, snap.ActiveListings)
	assert.Equal(t, 5, snap.PendingListings)
	assert.NotNil(t, snap.MonthsOfSupply)
	assert.Equal(t, 3.0, *snap.MonthsOfSupply)
	assert.Equal(t, models.MarketTypeSlightSeller, snap.MarketType)
	assert.InDelta(t, 33.3, snap.AbsorptionRate, 0.01)
}

func TestBuildInventorySnapshot_NoVelocity(t *testing.T) {
	snap := BuildInventorySnapshot(30, 5, 0)

	assert.Nil(t, snap.MonthsOfSupply)
	assert.Equal(t, models.MarketTypeUnknown, snap.MarketType)
	assert.Equal(t, "Insufficient data", snap.MarketDescription)
	assert.Equal(t, 0.0, snap.AbsorptionRate)
}

func TestMarketTypeForSupplyThresholds(t *testing.T) {
	cases := []struct {
		supply   float64
		expected string
	}{
		{1.0, models.MarketTypeSeller},
		{2.9, models.MarketTypeSeller},
		{3.0, models.MarketTypeSlightSeller},
		{3.9, models.MarketTypeSlightSeller},
		{4.0, models.MarketTypeBalanced},
		{6.0, models.MarketTypeBalanced},
		{6.1, models.MarketTypeSlightBuyer},
		{8.0, models.MarketTypeSlightBuyer},
		{8.1, models.MarketTypeBuyer},
		{12.0, models.MarketTypeBuyer},
	}
	for _, tc := range cases {
		marketType, _ := marketTypeForSupply(tc.supply)
		assert.Equal(t, tc.expected, marketType, "supply %.1f", tc.supply)
	}
}
