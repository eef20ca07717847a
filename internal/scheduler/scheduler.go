package scheduler

import (
	"context"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"homepulse/server/config"
	"homepulse/server/internal/analytics"
	"homepulse/server/internal/reports"
)

// Refresher recomputes market conditions reports for the configured
// locations on a cron schedule so the cache stays warm.
type Refresher struct {
	service  *reports.Service
	config   *config.Config
	logger   *logrus.Logger
	cron     *cron.Cron
	jobMutex sync.Mutex // one refresh sweep at a time
}

// NewRefresher creates a refresher over the report service.
func NewRefresher(service *reports.Service, cfg *config.Config, logger *logrus.Logger) *Refresher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Refresher{
		service: service,
		config:  cfg,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules the periodic refresh and runs one sweep immediately in
// the background.
func (r *Refresher) Start() error {
	if len(r.config.Reports.RefreshLocations) == 0 {
		r.logger.Info("No refresh locations configured, report refresher disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(r.config.Reports.RefreshSchedule, r.RefreshAll); err != nil {
		return err
	}
	r.cron.Start()

	go r.RefreshAll()
	return nil
}

// Stop halts the schedule. A sweep already in flight finishes.
func (r *Refresher) Stop() {
	r.cron.Stop()
}

// RefreshAll recomputes and re-caches the report for every configured
// location. Failures are logged per location and do not stop the sweep.
func (r *Refresher) RefreshAll() {
	r.jobMutex.Lock()
	defer r.jobMutex.Unlock()

	ctx := context.Background()
	for _, location := range r.config.Reports.RefreshLocations {
		city, state := splitLocation(location)
		if city == "" {
			r.logger.Warnf("Skipping malformed refresh location %q", location)
			continue
		}

		query := analytics.MarketQuery{
			City:   city,
			State:  state,
			Months: r.config.Reports.DefaultMonths,
		}
		if _, err := r.service.RefreshMarketConditions(ctx, query); err != nil {
			r.logger.WithError(err).WithField("city", city).Error("Failed to refresh market report")
			continue
		}
		r.logger.WithFields(logrus.Fields{
			"city":  city,
			"state": state,
		}).Info("Refreshed market report")
	}
}

// splitLocation parses a "City,ST" pair; the state part is optional.
func splitLocation(location string) (city, state string) {
	parts := strings.SplitN(location, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}
