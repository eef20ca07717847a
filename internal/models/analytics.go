package models

// PeriodStatistic is one aggregation bucket (month, quarter or year) of
// closed sales. Ordinal is monotonically increasing in chronological order
// within a single granularity.
type PeriodStatistic struct {
	Period           string  `json:"period"`
	Ordinal          int     `json:"-"`
	SaleCount        int     `json:"sale_count"`
	AvgClosePrice    float64 `json:"avg_close_price"`
	MedianPrice      float64 `json:"median_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgPricePerSqft  float64 `json:"avg_price_per_sqft"`
	AvgDaysOnMarket  float64 `json:"avg_days_on_market"`
	AvgSaleToListPct float64 `json:"avg_sale_to_list_pct"`
	TotalVolume      float64 `json:"total_volume"`
}

// Trend directions.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// TrendResult classifies the overall direction of a metric across a period
// series. ChangePercent is nil when the series is too short to compare.
type TrendResult struct {
	Direction     string   `json:"direction"`
	ChangePercent *float64 `json:"change_percent"`
}

// Market types derived from months of supply.
const (
	MarketTypeSeller       = "seller"
	MarketTypeSlightSeller = "slight_seller"
	MarketTypeBalanced     = "balanced"
	MarketTypeSlightBuyer  = "slight_buyer"
	MarketTypeBuyer        = "buyer"
	MarketTypeUnknown      = "unknown"
)

// InventorySnapshot captures current supply conditions. MonthsOfSupply is
// nil when there is no sales velocity to divide by.
type InventorySnapshot struct {
	ActiveListings    int      `json:"active_listings"`
	PendingListings   int      `json:"pending_listings"`
	AvgMonthlySales   float64  `json:"avg_monthly_sales"`
	MonthsOfSupply    *float64 `json:"months_of_supply"`
	MarketType        string   `json:"market_type"`
	MarketDescription string   `json:"market_description"`
	AbsorptionRate    float64  `json:"absorption_rate"`
}

// MarketHealthResult is the composite market score. Score accumulates from
// a base of 50 and is deliberately not clamped to [0,100]; the status
// thresholds were tuned against the unclamped range.
type MarketHealthResult struct {
	Score       int      `json:"score"`
	Status      string   `json:"status"`
	StatusColor string   `json:"status_color"`
	Indicator   string   `json:"indicator"`
	Factors     []string `json:"factors"`
	Summary     string   `json:"summary"`
}
