package analytics

import (
	"fmt"
	"sort"
	"time"

	"homepulse/server/internal/models"
)

// Granularity selects the aggregation bucket size.
type Granularity int

const (
	Month Granularity = iota
	Quarter
	Year
)

// String returns the string representation of a Granularity.
func (g Granularity) String() string {
	switch g {
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	default:
		return "unknown"
	}
}

// ParseGranularity maps a query-string value to a Granularity, defaulting
// to Month for unrecognized input.
func ParseGranularity(s string) Granularity {
	switch s {
	case "quarter":
		return Quarter
	case "year":
		return Year
	default:
		return Month
	}
}

// periodAccumulator collects the per-metric sums for one bucket. Each
// metric keeps its own count so a record missing one field still
// contributes to the others.
type periodAccumulator struct {
	period  string
	ordinal int

	saleCount   int
	priceSum    float64
	priceCount  int
	prices      []float64
	minPrice    float64
	maxPrice    float64
	sqftSum     float64
	sqftCount   int
	domSum      float64
	domCount    int
	ratioSum    float64
	ratioCount  int
	totalVolume float64
}

func periodKey(t time.Time, g Granularity) (label string, ordinal int) {
	year, month := t.Year(), int(t.Month())
	switch g {
	case Quarter:
		q := (month + 2) / 3
		return fmt.Sprintf("%d-Q%d", year, q), year*4 + (q - 1)
	case Year:
		return fmt.Sprintf("%d", year), year
	default:
		return fmt.Sprintf("%d-%02d", year, month), year*12 + (month - 1)
	}
}

// daysOnMarket prefers the record's own DOM field; when that is missing or
// zero it falls back to the contract-to-close delta in days.
func daysOnMarket(r models.SaleRecord) (float64, bool) {
	if r.DaysOnMarket != nil && *r.DaysOnMarket > 0 {
		return float64(*r.DaysOnMarket), true
	}
	if r.ContractDate != nil && r.CloseDate != nil {
		days := r.CloseDate.Sub(*r.ContractDate).Hours() / 24
		if days >= 0 {
			return days, true
		}
	}
	return 0, false
}

// Aggregate groups closed-sale records into chronological periods and
// computes per-period descriptive statistics. Records are expected to be
// pre-filtered by the caller; records without a close date cannot be
// bucketed and are skipped. An empty input yields an empty slice.
func Aggregate(records []models.SaleRecord, g Granularity) []models.PeriodStatistic {
	buckets := make(map[int]*periodAccumulator)

	for _, r := range records {
		if r.CloseDate == nil {
			continue
		}
		label, ordinal := periodKey(*r.CloseDate, g)
		acc, ok := buckets[ordinal]
		if !ok {
			acc = &periodAccumulator{period: label, ordinal: ordinal}
			buckets[ordinal] = acc
		}
		acc.saleCount++

		if r.ClosePrice != nil && *r.ClosePrice > 0 {
			price := *r.ClosePrice
			acc.priceSum += price
			acc.priceCount++
			acc.prices = append(acc.prices, price)
			acc.totalVolume += price
			if acc.minPrice == 0 || price < acc.minPrice {
				acc.minPrice = price
			}
			if price > acc.maxPrice {
				acc.maxPrice = price
			}

			// Price per sqft only over records with a positive area.
			if r.BuildingArea != nil && *r.BuildingArea > 0 {
				acc.sqftSum += price / *r.BuildingArea
				acc.sqftCount++
			}
			if r.ListPrice != nil && *r.ListPrice > 0 {
				acc.ratioSum += price / *r.ListPrice * 100
				acc.ratioCount++
			}
		}

		if dom, ok := daysOnMarket(r); ok {
			acc.domSum += dom
			acc.domCount++
		}
	}

	stats := make([]models.PeriodStatistic, 0, len(buckets))
	for _, acc := range buckets {
		stats = append(stats, acc.finalize())
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Ordinal < stats[j].Ordinal
	})
	return stats
}

func (acc *periodAccumulator) finalize() models.PeriodStatistic {
	stat := models.PeriodStatistic{
		Period:      acc.period,
		Ordinal:     acc.ordinal,
		SaleCount:   acc.saleCount,
		MinPrice:    acc.minPrice,
		MaxPrice:    acc.maxPrice,
		TotalVolume: acc.totalVolume,
	}
	if acc.priceCount > 0 {
		stat.AvgClosePrice = acc.priceSum / float64(acc.priceCount)
		stat.MedianPrice = Median(acc.prices)
	}
	if acc.sqftCount > 0 {
		stat.AvgPricePerSqft = acc.sqftSum / float64(acc.sqftCount)
	}
	if acc.domCount > 0 {
		stat.AvgDaysOnMarket = acc.domSum / float64(acc.domCount)
	}
	if acc.ratioCount > 0 {
		stat.AvgSaleToListPct = acc.ratioSum / float64(acc.ratioCount)
	}
	return stat
}
