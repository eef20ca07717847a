package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		// HTTP listen port
		Port int `env:"SERVER_PORT" envDefault:"5250"`
	}

	Database struct {
		// Path to the sqlite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/homepulse.db"`
	}

	Cache struct {
		// Redis address for the report cache; empty selects the in-memory cache
		RedisAddr string `env:"REDIS_ADDR"`

		// Report cache TTL in seconds
		ReportTTL int `env:"REPORT_CACHE_TTL" envDefault:"900"`
	}

	Reports struct {
		// Default analysis window in months when the caller does not specify one
		DefaultMonths int `env:"REPORT_DEFAULT_MONTHS" envDefault:"12"`

		// Minimum close price for a sale to count toward market statistics
		PriceFloor float64 `env:"REPORT_PRICE_FLOOR" envDefault:"10000"`

		// Cron schedule for the background report refresher
		RefreshSchedule string `env:"REPORT_REFRESH_CRON" envDefault:"@hourly"`

		// Locations to precompute reports for, as "City,ST" pairs separated by ";"
		RefreshLocations []string `env:"REPORT_REFRESH_LOCATIONS" envSeparator:";"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of queued record batches
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
