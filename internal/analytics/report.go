package analytics

import (
	"time"

	"homepulse/server/internal/models"
)

// MarketQuery identifies the slice of the market a conditions report
// covers. Records handed to the formatter must already match it.
type MarketQuery struct {
	City         string
	State        string
	PropertyType string
	Months       int
}

// InventoryInputs are the store-supplied counts backing the inventory
// section of a market report.
type InventoryInputs struct {
	ActiveListings  int
	PendingListings int
	AvgMonthlySales float64
}

// BuildMarketConditionsReport assembles the full market conditions report
// from a pre-filtered batch of closed sales and current inventory counts.
// Every section degrades to sentinel values rather than failing when its
// inputs are thin.
func BuildMarketConditionsReport(q MarketQuery, sales []models.SaleRecord, inv InventoryInputs, now time.Time) *models.MarketConditionsReport {
	monthly := Aggregate(sales, Month)
	snapshot := BuildInventorySnapshot(inv.ActiveListings, inv.PendingListings, inv.AvgMonthlySales)

	domSeries, rawDOM := buildDOMSeries(monthly, sales)
	ratioSeries, rawRatio := buildRatioSeries(monthly, sales)
	priceSeries := buildPriceSeries(monthly)

	// The scorer sees the raw means; rounding is display-only and would
	// shift values across the band edges.
	health := ScoreMarketHealth(HealthInputs{
		AvgDaysOnMarket:        optionalAverage(rawDOM, domSeries.SampleSize),
		AvgListSaleRatio:       optionalAverage(rawRatio, ratioSeries.SampleSize),
		Inventory:              &snapshot,
		AnnualizedAppreciation: optionalAppreciation(priceSeries),
	})

	return &models.MarketConditionsReport{
		Location: models.ReportLocation{
			City:         q.City,
			State:        q.State,
			PropertyType: q.PropertyType,
		},
		AnalysisPeriod: models.AnalysisPeriod{
			Months:    q.Months,
			StartDate: now.AddDate(0, -q.Months, 0).Format("2006-01-02"),
			EndDate:   now.Format("2006-01-02"),
		},
		DaysOnMarket:    domSeries,
		ListToSaleRatio: ratioSeries,
		Inventory:       snapshot,
		PriceTrends:     priceSeries,
		MarketHealth:    health,
		GeneratedAt:     now,
	}
}

func buildDOMSeries(monthly []models.PeriodStatistic, sales []models.SaleRecord) (models.MetricSeries, float64) {
	var values []float64
	for _, r := range sales {
		if dom, ok := daysOnMarket(r); ok {
			values = append(values, dom)
		}
	}
	avg := Mean(values)
	trend := Classify(monthly, MetricAvgDaysOnMarket)
	return models.MetricSeries{
		Monthly:          monthly,
		Average:          round1(avg),
		Trend:            trend,
		TrendDescription: describeDOMTrend(trend.Direction),
		SampleSize:       len(values),
	}, avg
}

func buildRatioSeries(monthly []models.PeriodStatistic, sales []models.SaleRecord) (models.RatioSeries, float64) {
	var ratios []float64
	for _, r := range sales {
		if r.ClosePrice != nil && r.ListPrice != nil && *r.ListPrice > 0 && *r.ClosePrice > 0 {
			ratios = append(ratios, *r.ClosePrice / *r.ListPrice)
		}
	}
	avg := Mean(ratios)
	trend := Classify(monthly, MetricAvgSaleToList)
	return models.RatioSeries{
		Monthly:           monthly,
		Average:           round2(avg),
		AveragePercentage: round1(avg * 100),
		Trend:             trend,
		TrendDescription:  describeRatioTrend(trend.Direction),
		SampleSize:        len(ratios),
	}, avg
}

func buildPriceSeries(monthly []models.PeriodStatistic) models.PriceTrendSeries {
	trend := Classify(monthly, MetricAvgClosePrice)
	series := models.PriceTrendSeries{
		Monthly:          monthly,
		Trend:            trend,
		TrendDescription: describePriceTrend(trend.Direction),
	}
	for _, p := range monthly {
		series.SampleSize += p.SaleCount
	}

	// Appreciation over the first and last periods that carry a price.
	first, last := 0.0, 0.0
	for _, p := range monthly {
		if p.AvgClosePrice > 0 {
			if first == 0 {
				first = p.AvgClosePrice
			}
			last = p.AvgClosePrice
		}
	}
	if first > 0 && len(monthly) > 0 {
		series.PeriodAppreciation = round1((last - first) / first * 100)
		series.AnnualizedAppreciation = round1(series.PeriodAppreciation * 12 / float64(len(monthly)))
	}
	return series
}

// optionalAverage turns a series average into a health-scorer input,
// withholding it entirely when nothing backed it.
func optionalAverage(avg float64, sampleSize int) *float64 {
	if sampleSize == 0 {
		return nil
	}
	return &avg
}

func optionalAppreciation(series models.PriceTrendSeries) *float64 {
	if series.SampleSize == 0 || len(series.Monthly) < 2 {
		return nil
	}
	v := series.AnnualizedAppreciation
	return &v
}

func describeDOMTrend(direction string) string {
	switch direction {
	case models.TrendIncreasing:
		return "Homes are taking longer to sell"
	case models.TrendDecreasing:
		return "Homes are selling faster"
	case models.TrendStable:
		return "Time on market is holding steady"
	default:
		return "Not enough periods to determine a trend"
	}
}

func describeRatioTrend(direction string) string {
	switch direction {
	case models.TrendIncreasing:
		return "Negotiating leverage is shifting toward sellers"
	case models.TrendDecreasing:
		return "Negotiating leverage is shifting toward buyers"
	case models.TrendStable:
		return "Sale-to-list ratios are holding steady"
	default:
		return "Not enough periods to determine a trend"
	}
}

func describePriceTrend(direction string) string {
	switch direction {
	case models.TrendIncreasing:
		return "Sale prices are trending upward"
	case models.TrendDecreasing:
		return "Sale prices are trending downward"
	case models.TrendStable:
		return "Sale prices are holding steady"
	default:
		return "Not enough periods to determine a trend"
	}
}
