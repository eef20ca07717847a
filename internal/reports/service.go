// Package reports owns the compute-and-cache path shared by the REST
// handlers and the background refresher.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"homepulse/server/config"
	"homepulse/server/internal/analytics"
	"homepulse/server/internal/cache"
	"homepulse/server/internal/database"
	"homepulse/server/internal/models"
)

// Number of store candidates pulled when a CMA request carries no
// comparables of its own.
const defaultCandidateLimit = 10

// Service computes market and CMA reports over the store, memoizing
// market reports in the cache.
type Service struct {
	store  *database.Store
	cache  cache.Cache
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a report service. A nil cache disables memoization.
func NewService(store *database.Store, c cache.Cache, cfg *config.Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{store: store, cache: c, config: cfg, logger: logger}
}

func marketKey(q analytics.MarketQuery) string {
	return cache.Key("market-conditions", q.City, q.State, q.PropertyType, strconv.Itoa(q.Months))
}

// MarketConditions returns the market conditions report for q, serving
// from cache when possible. The window default is applied before the key
// is computed, so months-unset requests share the cache entry the
// refresher warms.
func (s *Service) MarketConditions(ctx context.Context, q analytics.MarketQuery) (*models.MarketConditionsReport, error) {
	if q.Months <= 0 {
		q.Months = s.config.Reports.DefaultMonths
	}
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, marketKey(q)); ok {
			var report models.MarketConditionsReport
			if err := json.Unmarshal(data, &report); err == nil {
				return &report, nil
			}
			s.logger.Warn("Discarding undecodable cached report")
		}
	}
	return s.RefreshMarketConditions(ctx, q)
}

// RefreshMarketConditions recomputes the report for q and replaces the
// cached copy. Cache failures never fail the computation.
func (s *Service) RefreshMarketConditions(ctx context.Context, q analytics.MarketQuery) (*models.MarketConditionsReport, error) {
	if q.Months <= 0 {
		q.Months = s.config.Reports.DefaultMonths
	}
	now := time.Now()

	sales, err := s.store.ClosedSales(q.City, q.State, q.PropertyType, now.AddDate(0, -q.Months, 0), now, s.config.Reports.PriceFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to load closed sales: %w", err)
	}
	active, err := s.store.CountByStatus(q.City, q.State, q.PropertyType, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active listings: %w", err)
	}
	pending, err := s.store.CountByStatus(q.City, q.State, q.PropertyType, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending listings: %w", err)
	}
	avgMonthly, err := s.store.AvgMonthlySales(q.City, q.State, q.PropertyType, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales velocity: %w", err)
	}

	report := analytics.BuildMarketConditionsReport(q, sales, analytics.InventoryInputs{
		ActiveListings:  active,
		PendingListings: pending,
		AvgMonthlySales: avgMonthly,
	}, now)

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			ttl := time.Duration(s.config.Cache.ReportTTL) * time.Second
			s.cache.Set(ctx, marketKey(q), data, ttl)
		}
	}
	return report, nil
}

// CMAConfidence scores the trustworthiness of a CMA backed by the given
// comparables. When the caller supplies none, recent closed sales around
// the subject are pulled from the store as ungraded candidates.
func (s *Service) CMAConfidence(subject models.Subject, comps []models.ComparableProperty) (models.ConfidenceReport, error) {
	if len(comps) == 0 {
		candidates, err := s.store.ComparableCandidates(subject, defaultCandidateLimit)
		if err != nil {
			return models.ConfidenceReport{}, fmt.Errorf("failed to load comparable candidates: %w", err)
		}
		comps = candidatesToComparables(candidates)
	}

	analytics.FillDistances(subject, comps)
	return analytics.ScoreConfidence(comps), nil
}

// candidatesToComparables maps raw store records onto the comparable
// shape. Without an adjustment pass the close price stands in for the
// adjusted price and the grade defaults to mid-tier.
func candidatesToComparables(records []models.SaleRecord) []models.ComparableProperty {
	comps := make([]models.ComparableProperty, 0, len(records))
	for _, r := range records {
		if r.ClosePrice == nil || *r.ClosePrice <= 0 {
			continue
		}
		comps = append(comps, models.ComparableProperty{
			AdjustedPrice:      *r.ClosePrice,
			ComparabilityGrade: "C",
			StandardStatus:     r.Status,
			CloseDate:          r.CloseDate,
			BuildingArea:       r.BuildingArea,
			Bedrooms:           r.Bedrooms,
			Bathrooms:          r.Bathrooms,
			YearBuilt:          r.YearBuilt,
			ListPrice:          r.ListPrice,
			Latitude:           r.Latitude,
			Longitude:          r.Longitude,
		})
	}
	return comps
}
