package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homepulse/server/internal/analytics"
	"homepulse/server/internal/database"
	"homepulse/server/internal/models"
	"homepulse/server/internal/queue"
	"homepulse/server/internal/reports"
)

type Handler struct {
	service *reports.Service
	store   *database.Store
	queue   *queue.RecordQueue
	logger  *logrus.Logger
}

type DateRange struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// ConfidenceRequest carries a CMA subject and optionally the comparable
// set backing the estimate. Without comparables, recent sales around the
// subject are pulled from the store.
type ConfidenceRequest struct {
	Subject     models.Subject              `json:"subject"`
	Comparables []models.ComparableProperty `json:"comparables"`
}

func NewHandler(service *reports.Service, store *database.Store, q *queue.RecordQueue, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		service: service,
		store:   store,
		queue:   q,
		logger:  logger,
	}
}

// GetMarketConditions serves the trend-classified market report for a
// location, from cache when fresh.
func (h *Handler) GetMarketConditions(c *gin.Context) {
	months := 0
	if monthsStr := c.Query("months"); monthsStr != "" {
		parsed, err := strconv.Atoi(monthsStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be a positive integer"})
			return
		}
		months = parsed
	}

	query := analytics.MarketQuery{
		City:         c.Query("city"),
		State:        c.Query("state"),
		PropertyType: c.Query("property_type"),
		Months:       months,
	}
	report, err := h.service.MarketConditions(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build market conditions report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build market conditions report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ScoreCMAConfidence scores how trustworthy a CMA estimate is given its
// comparable set.
func (h *Handler) ScoreCMAConfidence(c *gin.Context) {
	var req ConfidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse confidence request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	report, err := h.service.CMAConfidence(req.Subject, req.Comparables)
	if err != nil {
		h.logger.WithError(err).Error("Failed to score CMA confidence")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to score CMA confidence"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// IngestRecords accepts a batch of sale records and queues it for
// persistence.
func (h *Handler) IngestRecords(c *gin.Context) {
	var records []*models.SaleRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		h.logger.WithError(err).Error("Failed to parse record batch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record batch"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Record batch is empty"})
		return
	}

	if err := h.queue.Push(records); err != nil {
		h.logger.WithError(err).Error("Failed to queue record batch")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingestion queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"count":  len(records),
	})
}

// GetAllProperties lists stored listings for a location and window.
func (h *Handler) GetAllProperties(c *gin.Context) {
	var dateRange DateRange
	if err := c.ShouldBindQuery(&dateRange); err != nil {
		h.logger.WithError(err).Error("Failed to parse date range")
	}

	records, err := h.store.Records(c.Query("city"), c.Query("state"), c.Query("property_type"),
		dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetRecentSales lists the most recently closed sales for a location.
func (h *Handler) GetRecentSales(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}

	sales, err := h.store.RecentSales(c.Query("city"), c.Query("state"), c.Query("property_type"), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent sales"})
		return
	}

	c.JSON(http.StatusOK, sales)
}

// HealthCheck is the liveness probe.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
