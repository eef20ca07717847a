package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/market-conditions", handler.GetMarketConditions)
		api.POST("/cma-confidence", handler.ScoreCMAConfidence)
		api.POST("/records", handler.IngestRecords)
		api.GET("/properties", handler.GetAllProperties)
		api.GET("/recent-sales", handler.GetRecentSales)
	}
}
