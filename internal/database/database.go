package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"homepulse/server/internal/models"
)

// Store wraps the sale-record database. All analytics queries go through
// it; the analytics core itself never touches the store.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Open opens (or creates) the sqlite database at dbPath and runs
// migrations.
func Open(dbPath string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.SaleRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sale records: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// UpsertBatch inserts or replaces a batch of sale records in a single
// transaction, keyed by MLS number.
func (s *Store) UpsertBatch(records []*models.SaleRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mls_number"}},
			UpdateAll: true,
		}).Create(records).Error
		if err != nil {
			return fmt.Errorf("failed to upsert sale records: %w", err)
		}
		return nil
	})
}

// location narrows a query to a city/state/property-type slice. Empty
// filter values match everything, mirroring the caller-supplied query
// parameters.
func location(tx *gorm.DB, city, state, propertyType string) *gorm.DB {
	if city != "" {
		tx = tx.Where("LOWER(city) = LOWER(?)", city)
	}
	if state != "" {
		tx = tx.Where("LOWER(state) = LOWER(?)", state)
	}
	if propertyType != "" {
		tx = tx.Where("LOWER(property_type) = LOWER(?)", propertyType)
	}
	return tx
}

// ClosedSales returns closed sales in the window at or above the price
// floor, oldest first. This is the pre-filtered input the period
// aggregator expects.
func (s *Store) ClosedSales(city, state, propertyType string, since, until time.Time, priceFloor float64) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	tx := location(s.db, city, state, propertyType).
		Where("status = ?", models.StatusClosed).
		Where("close_date IS NOT NULL AND close_date >= ? AND close_date <= ?", since, until)
	if priceFloor > 0 {
		tx = tx.Where("close_price >= ?", priceFloor)
	}
	if err := tx.Order("close_date ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query closed sales: %w", err)
	}
	return records, nil
}

// CountByStatus returns the number of listings currently in the given
// status for a location.
func (s *Store) CountByStatus(city, state, propertyType, status string) (int, error) {
	var count int64
	tx := location(s.db.Model(&models.SaleRecord{}), city, state, propertyType).
		Where("status = ?", status)
	if err := tx.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s listings: %w", status, err)
	}
	return int(count), nil
}

// AvgMonthlySales returns the trailing three-month average of closed sales
// per month for a location.
func (s *Store) AvgMonthlySales(city, state, propertyType string, now time.Time) (float64, error) {
	var count int64
	tx := location(s.db.Model(&models.SaleRecord{}), city, state, propertyType).
		Where("status = ?", models.StatusClosed).
		Where("close_date IS NOT NULL AND close_date >= ?", now.AddDate(0, -3, 0))
	if err := tx.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent sales: %w", err)
	}
	return float64(count) / 3, nil
}

// RecentSales returns the most recently closed sales for a location.
func (s *Store) RecentSales(city, state, propertyType string, limit int) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	tx := location(s.db, city, state, propertyType).
		Where("status = ?", models.StatusClosed).
		Order("close_date DESC").
		Limit(limit)
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent sales: %w", err)
	}
	return records, nil
}

// Records returns listings of any status for a location, optionally
// bounded by close or list date.
func (s *Store) Records(city, state, propertyType string, startDate, endDate string) ([]models.SaleRecord, error) {
	tx := location(s.db, city, state, propertyType)
	if startDate != "" {
		tx = tx.Where("COALESCE(close_date, list_date) >= ?", startDate)
	}
	if endDate != "" {
		tx = tx.Where("COALESCE(close_date, list_date) <= ?", endDate)
	}
	var records []models.SaleRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

// ComparableCandidates returns recent closed sales around a subject for
// callers that do not supply their own comparable set. The records come
// back unadjusted and ungraded; the confidence scorer treats them as
// mid-grade comps.
func (s *Store) ComparableCandidates(subject models.Subject, limit int) ([]models.SaleRecord, error) {
	return s.RecentSales(subject.City, subject.State, subject.PropertyType, limit)
}

// DB exposes the underlying gorm handle for wiring.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
