package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/tapeworker/config"
	"sjsage522/tapeworker/helpers"
	"sjsage522/tapeworker/internal"
	"sjsage522/tapeworker/internal/shop"
	"sjsage522/tapeworker/logger"
	"sjsage522/tapeworker/services/cache"
	"sjsage522/tapeworker/services/extractor"
	"sjsage522/tapeworker/services/ledger"
	"sjsage522/tapeworker/services/publisher"
	"sjsage522/tapeworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	once := flag.Bool("once", false, "run every shop once and exit, ignoring RUN_INTERVAL_SECONDS")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-once] [shop...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	catalog, err := shop.Load(cfg.ShopsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.ShopsFile).Msg("Failed to load shop catalog")
	}
	shops, err := catalog.Select(flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to select shops")
	}

	interval := cfg.RunInterval
	if *once {
		interval = 0
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("shops", len(shops)).
		Dur("run_interval", interval).
		Msg("Starting application")

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close services")
		}
	}()

	var recorder worker.RunRecorder
	if deps.Ledger != nil {
		recorder = deps.Ledger
	}

	w := worker.NewWorker(
		shops,
		deps.Service,
		deps.Cache,
		deps.Publisher,
		recorder,
		helpers.NewLogger(cfg.ErrorLogFile),
		worker.Options{
			Concurrency: cfg.WorkerConcurrency,
			CacheTTL:    cfg.CrawlCacheTTL,
			Template:    catalog.ExtractTemplate(),
			Rates:       cfg.Rates,
			LogSample:   !cfg.IsProduction(),
		},
	)

	log.Info().Msg("Starting tape worker")
	w.Start(ctx, interval)

	if ctx.Err() != nil {
		log.Info().Msg("Received shutdown signal")
	}
	if deps.Ledger != nil {
		logSummary(context.Background(), deps.Ledger)
	}
	log.Info().Msg("Shutting down gracefully...")
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{
		Service: extractor.NewClient(cfg.FetchFoxHost, cfg.FetchFoxAPIKey, cfg.ExtractTimeout),
		Cache:   cache.NopCache{},
	}

	// Initialize cache service
	if cfg.MemcacheAddr != "" {
		memcache := cache.NewMemcacheService(cfg.MemcacheAddr, time.Second)
		if err := memcache.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, crawling without cache: %v", cfg.MemcacheAddr, err)
		} else {
			deps.Cache = memcache
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	// Initialize publishers
	var publishers publisher.Multi
	if cfg.OutputDir != "" {
		filePublisher, err := publisher.NewFilePublisher(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, filePublisher)
		logger.Info("Writing records to %s", cfg.OutputDir)
	}
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(); err != nil {
			publishers.Close()
			redisPublisher.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		publishers = append(publishers, redisPublisher)
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}
	deps.Publisher = publishers

	// Initialize run ledger
	if cfg.LedgerPath != "" {
		l, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		deps.Ledger = l
	}

	return deps, nil
}

// logSummary logs the cost history of every shop
func logSummary(ctx context.Context, l *ledger.Ledger) {
	summaries, err := l.Summary(ctx)
	if err != nil {
		logger.Error("Failed to read ledger summary: %v", err)
		return
	}
	for _, s := range summaries {
		fields := logger.Fields{
			"runs":     s.Runs,
			"items":    s.Items,
			"cost_usd": s.Cost,
			"last_run": s.LastRunAt,
		}
		if perK, ok := s.CostPerThousand(); ok {
			fields["usd_per_1k"] = perK
		}
		logger.ForShop(s.Shop).WithFields(fields).Info().Msg("Ledger summary")
	}
}
