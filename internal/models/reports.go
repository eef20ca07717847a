package models

import "time"

// ReportLocation echoes the query the report was computed for.
type ReportLocation struct {
	City         string `json:"city"`
	State        string `json:"state"`
	PropertyType string `json:"property_type"`
}

// AnalysisPeriod is the window the report covers.
type AnalysisPeriod struct {
	Months    int    `json:"months"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// MetricSeries is the per-metric section of a market conditions report:
// the raw monthly buckets plus the overall average and trend call.
type MetricSeries struct {
	Monthly          []PeriodStatistic `json:"monthly"`
	Average          float64           `json:"average"`
	Trend            TrendResult       `json:"trend"`
	TrendDescription string            `json:"trend_description"`
	SampleSize       int               `json:"sample_size"`
}

// RatioSeries is MetricSeries for the list-to-sale ratio, which is
// reported both as a ratio and as a percentage.
type RatioSeries struct {
	Monthly           []PeriodStatistic `json:"monthly"`
	Average           float64           `json:"average"`
	AveragePercentage float64           `json:"average_percentage"`
	Trend             TrendResult       `json:"trend"`
	TrendDescription  string            `json:"trend_description"`
	SampleSize        int               `json:"sample_size"`
}

// PriceTrendSeries adds appreciation figures to the price series.
type PriceTrendSeries struct {
	Monthly                []PeriodStatistic `json:"monthly"`
	PeriodAppreciation     float64           `json:"period_appreciation"`
	AnnualizedAppreciation float64           `json:"annualized_appreciation"`
	Trend                  TrendResult       `json:"trend"`
	TrendDescription       string            `json:"trend_description"`
	SampleSize             int               `json:"sample_size"`
}

// MarketConditionsReport is the full market report returned to callers.
type MarketConditionsReport struct {
	Location        ReportLocation     `json:"location"`
	AnalysisPeriod  AnalysisPeriod     `json:"analysis_period"`
	DaysOnMarket    MetricSeries       `json:"days_on_market"`
	ListToSaleRatio RatioSeries        `json:"list_to_sale_ratio"`
	Inventory       InventorySnapshot  `json:"inventory"`
	PriceTrends     PriceTrendSeries   `json:"price_trends"`
	MarketHealth    MarketHealthResult `json:"market_health"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// ConfidenceBreakdown holds the six sub-scores of a CMA confidence
// assessment. The maxima (25, 20, 20, 15, 10, 10) sum to 100, so the total
// is in [0, 100] by construction.
type ConfidenceBreakdown struct {
	SampleSize              float64 `json:"sample_size"`
	DataCompleteness        float64 `json:"data_completeness"`
	MarketStability         float64 `json:"market_stability"`
	TimeRelevance           float64 `json:"time_relevance"`
	GeographicConcentration float64 `json:"geographic_concentration"`
	ComparabilityQuality    float64 `json:"comparability_quality"`
}

// Reliability phrases the confidence score for end users.
type Reliability struct {
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}

// ConfidenceReport is the CMA confidence assessment returned to callers.
// Recommendations start with the overall recommendation, followed by any
// per-factor remediations in factor order.
type ConfidenceReport struct {
	Score                 float64             `json:"score"`
	Level                 string              `json:"level"`
	Breakdown             ConfidenceBreakdown `json:"breakdown"`
	Recommendations       []string            `json:"recommendations"`
	ReliabilityPercentage Reliability         `json:"reliability_percentage"`
}
