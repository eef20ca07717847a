package analytics

import (
	"fmt"

	"homepulse/server/internal/models"
)

// HealthInputs are the four independent signals the market health score is
// built from. Nil fields are skipped entirely rather than treated as zero.
type HealthInputs struct {
	AvgDaysOnMarket        *float64
	AvgListSaleRatio       *float64 // close/list, e.g. 0.985
	Inventory              *models.InventorySnapshot
	AnnualizedAppreciation *float64 // percent per year
}

const healthBaseScore = 50

// ScoreMarketHealth combines DOM, list-to-sale ratio, inventory and price
// appreciation into one composite score starting from a neutral 50. The
// four adjustment groups are independent and additive, and the result is
// intentionally not clamped to [0,100]; the status ladder below was tuned
// against the raw accumulated score.
func ScoreMarketHealth(in HealthInputs) models.MarketHealthResult {
	score := healthBaseScore
	factors := []string{}

	if in.AvgDaysOnMarket != nil {
		switch dom := *in.AvgDaysOnMarket; {
		case dom < 30:
			score += 10
			factors = append(factors, "Fast-moving market (low DOM)")
		case dom > 90:
			score -= 10
			factors = append(factors, "Slow market (high DOM)")
		}
	}

	if in.AvgListSaleRatio != nil {
		switch ratio := *in.AvgListSaleRatio; {
		case ratio >= 1.0:
			score += 10
			factors = append(factors, "Homes selling at/above list price")
		case ratio < 0.95:
			score -= 5
			factors = append(factors, "Homes selling below list price")
		}
	}

	if in.Inventory != nil && in.Inventory.MonthsOfSupply != nil {
		switch supply := *in.Inventory.MonthsOfSupply; {
		case supply < 3:
			score += 15
			factors = append(factors, "Low inventory (seller's market)")
		case supply > 6:
			score -= 10
			factors = append(factors, "High inventory (buyer's market)")
		default:
			factors = append(factors, "Balanced inventory")
		}
	}

	if in.AnnualizedAppreciation != nil {
		switch appreciation := *in.AnnualizedAppreciation; {
		case appreciation > 10:
			score += 15
			factors = append(factors, fmt.Sprintf("Strong price appreciation (%.1f%%/yr)", appreciation))
		case appreciation > 5:
			score += 10
			factors = append(factors, fmt.Sprintf("Solid price appreciation (%.1f%%/yr)", appreciation))
		case appreciation > 0:
			score += 5
			factors = append(factors, fmt.Sprintf("Modest price appreciation (%.1f%%/yr)", appreciation))
		case appreciation < -5:
			score -= 10
			factors = append(factors, fmt.Sprintf("Prices declining (%.1f%%/yr)", appreciation))
		}
	}

	status, color, indicator := healthStatus(score)
	return models.MarketHealthResult{
		Score:       score,
		Status:      status,
		StatusColor: color,
		Indicator:   indicator,
		Factors:     factors,
		Summary:     healthSummary(in.Inventory),
	}
}

func healthStatus(score int) (status, color, indicator string) {
	switch {
	case score >= 70:
		return "Hot Market", "red", "seller_market"
	case score >= 55:
		return "Healthy Market", "orange", "slight_seller"
	case score >= 45:
		return "Balanced Market", "green", "balanced"
	case score >= 30:
		return "Soft Market", "blue", "slight_buyer"
	default:
		return "Buyer's Market", "purple", "buyer_market"
	}
}

// healthSummary picks the narrative from the inventory-derived market type,
// not from the numeric score; the two can legitimately diverge.
func healthSummary(inv *models.InventorySnapshot) string {
	if inv == nil {
		return "Not enough inventory data to characterize this market."
	}
	switch inv.MarketType {
	case models.MarketTypeSeller, models.MarketTypeSlightSeller:
		return "Demand is outpacing supply. Sellers hold the advantage: well-priced homes attract multiple offers and sell quickly, often at or above list price."
	case models.MarketTypeBuyer, models.MarketTypeSlightBuyer:
		return "Supply is outpacing demand. Buyers hold the advantage: homes stay on the market longer and there is room to negotiate on price and terms."
	case models.MarketTypeBalanced:
		return "Supply and demand are roughly in balance. Homes sell at a steady pace near list price, and neither buyers nor sellers hold a clear advantage."
	default:
		return "Not enough inventory data to characterize this market."
	}
}

// BuildInventorySnapshot derives months of supply, market type and
// absorption rate from current counts and trailing sales velocity.
// MonthsOfSupply is undefined (nil) when there is no sales velocity.
func BuildInventorySnapshot(active, pending int, avgMonthlySales float64) models.InventorySnapshot {
	snap := models.InventorySnapshot{
		ActiveListings:  active,
		PendingListings: pending,
		AvgMonthlySales: avgMonthlySales,
	}

	if avgMonthlySales > 0 {
		supply := round1(float64(active) / avgMonthlySales)
		snap.MonthsOfSupply = &supply
		snap.MarketType, snap.MarketDescription = marketTypeForSupply(supply)
	} else {
		snap.MarketType = models.MarketTypeUnknown
		snap.MarketDescription = "Insufficient data"
	}

	if active > 0 {
		snap.AbsorptionRate = round1(avgMonthlySales / float64(active) * 100)
	}
	return snap
}

func marketTypeForSupply(monthsOfSupply float64) (marketType, description string) {
	switch {
	case monthsOfSupply < 3:
		return models.MarketTypeSeller, "Strong seller's market"
	case monthsOfSupply < 4:
		return models.MarketTypeSlightSeller, "Slight seller's market"
	case monthsOfSupply <= 6:
		return models.MarketTypeBalanced, "Balanced market"
	case monthsOfSupply <= 8:
		return models.MarketTypeSlightBuyer, "Slight buyer's market"
	default:
		return models.MarketTypeBuyer, "Strong buyer's market"
	}
}
