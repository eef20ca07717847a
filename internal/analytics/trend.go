package analytics

import "homepulse/server/internal/models"

// Metric selects which PeriodStatistic field a trend is computed over.
type Metric int

const (
	MetricAvgClosePrice Metric = iota
	MetricMedianPrice
	MetricAvgDaysOnMarket
	MetricAvgSaleToList
	MetricAvgPricePerSqft
	MetricSaleCount
)

func (m Metric) value(p models.PeriodStatistic) float64 {
	switch m {
	case MetricMedianPrice:
		return p.MedianPrice
	case MetricAvgDaysOnMarket:
		return p.AvgDaysOnMarket
	case MetricAvgSaleToList:
		return p.AvgSaleToListPct
	case MetricAvgPricePerSqft:
		return p.AvgPricePerSqft
	case MetricSaleCount:
		return float64(p.SaleCount)
	default:
		return p.AvgClosePrice
	}
}

// Fewer periods than this is considered too noisy for a half-over-half
// comparison.
const minTrendPeriods = 4

// Band (in percent) within which a change counts as stable.
const stableBandPct = 5.0

// Classify compares the first and second half of a chronological period
// series and labels the overall direction of the chosen metric. Series
// shorter than four periods are reported as insufficient data; a zero
// first-half average is reported as stable rather than dividing by it.
func Classify(series []models.PeriodStatistic, metric Metric) models.TrendResult {
	if len(series) < minTrendPeriods {
		return models.TrendResult{Direction: models.TrendInsufficientData}
	}

	mid := len(series) / 2
	firstAvg := meanOf(series[:mid], metric)
	secondAvg := meanOf(series[mid:], metric)

	if firstAvg == 0 {
		zero := 0.0
		return models.TrendResult{Direction: models.TrendStable, ChangePercent: &zero}
	}

	change := round2((secondAvg - firstAvg) / firstAvg * 100)
	direction := models.TrendStable
	switch {
	case change > stableBandPct:
		direction = models.TrendIncreasing
	case change < -stableBandPct:
		direction = models.TrendDecreasing
	}
	return models.TrendResult{Direction: direction, ChangePercent: &change}
}

func meanOf(series []models.PeriodStatistic, metric Metric) float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = metric.value(p)
	}
	return Mean(values)
}
