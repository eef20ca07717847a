package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homepulse/server/config"
	"homepulse/server/internal/api"
	"homepulse/server/internal/cache"
	"homepulse/server/internal/database"
	"homepulse/server/internal/processor"
	"homepulse/server/internal/queue"
	"homepulse/server/internal/reports"
	"homepulse/server/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	store, err := database.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	// Redis-backed report cache when configured, in-memory otherwise.
	var reportCache cache.Cache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, falling back to in-memory report cache")
			reportCache = cache.NewMemoryCache()
		} else {
			defer redisCache.Close()
			reportCache = redisCache
		}
	} else {
		reportCache = cache.NewMemoryCache()
	}

	// Ingestion pipeline: queue feeding retrying batch upserts.
	recordQueue := queue.NewRecordQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(store, recordQueue, cfg, logger)
	batchProcessor.Start()
	recordQueue.Start()
	defer func() {
		recordQueue.Close()
		batchProcessor.Stop()
	}()

	service := reports.NewService(store, reportCache, cfg, logger)

	refresher := scheduler.NewRefresher(service, cfg, logger)
	if err := refresher.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start report refresher")
	}
	defer refresher.Stop()

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, api.NewHandler(service, store, recordQueue, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
