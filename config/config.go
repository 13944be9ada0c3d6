package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"sjsage522/tapeworker/internal/economics"
	pkgerrors "sjsage522/tapeworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Extraction service
	FetchFoxHost   string
	FetchFoxAPIKey string
	ExtractTimeout time.Duration

	// Shop catalog and outputs
	ShopsFile    string
	OutputDir    string
	LedgerPath   string
	ErrorLogFile string

	// Redis configuration; an empty address disables the stream publisher
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration; an empty address disables the crawl cache
	MemcacheAddr  string
	CrawlCacheTTL time.Duration

	// Worker configuration; a zero interval runs once
	RunInterval       time.Duration
	WorkerConcurrency int

	// Euro exchange rates, defaults overridden by EUR_RATES
	Rates economics.Rates

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	var errs []error
	intEnv := func(key, def string) int {
		v, err := strconv.Atoi(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}

	rates, err := economics.ParseRates(os.Getenv("EUR_RATES"), economics.DefaultRates())
	if err != nil {
		errs = append(errs, fmt.Errorf("EUR_RATES: %w", err))
	}

	cfg := &Config{
		FetchFoxHost:         getEnv("FETCHFOX_HOST", "https://api.fetchfox.ai"),
		FetchFoxAPIKey:       os.Getenv("FETCHFOX_API_KEY"),
		ExtractTimeout:       time.Duration(intEnv("EXTRACT_TIMEOUT_SECONDS", "600")) * time.Second,
		ShopsFile:            getEnv("SHOPS_FILE", "shops.yaml"),
		OutputDir:            getEnv("OUTPUT_DIR", "out"),
		LedgerPath:           getEnv("LEDGER_PATH", "out/ledger.db"),
		ErrorLogFile:         os.Getenv("ERROR_LOG_FILE"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              intEnv("REDIS_DB", "0"),
		RedisStream:          getEnv("REDIS_STREAM", "tapes"),
		RedisStreamMaxLength: intEnv("REDIS_STREAM_MAX_LENGTH", "10000"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		CrawlCacheTTL:        time.Duration(intEnv("CRAWL_CACHE_TTL_MINUTES", "1440")) * time.Minute,
		RunInterval:          time.Duration(intEnv("RUN_INTERVAL_SECONDS", "0")) * time.Second,
		WorkerConcurrency:    intEnv("WORKER_CONCURRENCY", "4"),
		Rates:                rates,
		Environment:          getEnv("TAPE_ENVIRONMENT", "development"),
	}
	if len(errs) > 0 {
		return nil, pkgerrors.NewConfiguration("failed to parse environment", errors.Join(errs...))
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	var errs []error
	if c.FetchFoxAPIKey == "" {
		errs = append(errs, errors.New("FETCHFOX_API_KEY is required"))
	}
	if c.ShopsFile == "" {
		errs = append(errs, errors.New("SHOPS_FILE must not be empty"))
	}
	if c.OutputDir == "" && c.RedisAddr == "" {
		errs = append(errs, errors.New("OUTPUT_DIR or REDIS_ADDR must be set"))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if c.RunInterval < 0 {
		errs = append(errs, errors.New("RUN_INTERVAL_SECONDS must not be negative"))
	}
	if c.CrawlCacheTTL < 0 {
		errs = append(errs, errors.New("CRAWL_CACHE_TTL_MINUTES must not be negative"))
	}
	if c.ExtractTimeout <= 0 {
		errs = append(errs, errors.New("EXTRACT_TIMEOUT_SECONDS must be positive"))
	}
	if len(errs) > 0 {
		return pkgerrors.NewConfiguration("invalid configuration", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether TAPE_ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
