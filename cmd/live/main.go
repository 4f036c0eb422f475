package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/engine"
	"boundary-trader/internal/execution"
	"boundary-trader/internal/ingestion"
	"boundary-trader/internal/live"
	"boundary-trader/internal/observability"
	"boundary-trader/internal/storage"
	"boundary-trader/internal/storage/memory"
	"boundary-trader/internal/storage/migrations"
	pgstore "boundary-trader/internal/storage/postgres"
)

func main() {
	symbol := flag.String("symbol", "", "Symbol to trade (default $LIVE_SYMBOL)")
	pollInterval := flag.Duration("poll-interval", 0, "Bar polling interval (default $LIVE_POLL_INTERVAL)")
	feedEndpoint := flag.String("feed-endpoint", "", "Websocket bar feed URL (default $LIVE_FEED_ENDPOINT, empty = REST polling)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for signals (default $POSTGRES_DSN)")
	metricsAddr := flag.String("metrics-addr", "", "Metrics listen address (default $METRICS_ADDR)")
	timezone := flag.String("timezone", "", "Session time zone (default $LIVE_TIMEZONE)")

	initialCapital := flag.Float64("initial-capital", 20000, "Initial capital")
	buildLevels := flag.Int("build-levels", 5, "Number of build ladder levels")
	profitLevels := flag.Int("profit-levels", 5, "Number of profit ladder levels")
	maxPositionRatio := flag.Float64("max-position-ratio", 0.20, "Capital fraction per entry")
	buyDrop := flag.Float64("buy-drop", 0.01, "Build ladder base offset below the average")
	sellRise := flag.Float64("sell-rise", 0.001, "Profit ladder base offset above the average")
	levelSpread := flag.Float64("level-spread", 0.001, "Spacing between adjacent ladder levels")

	flag.Parse()

	logger := log.New(os.Stderr, "[live] ", log.LstdFlags)

	cfg, err := live.LoadConfig()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *pollInterval != 0 {
		cfg.PollInterval = *pollInterval
	}
	if *feedEndpoint != "" {
		cfg.FeedEndpoint = *feedEndpoint
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *timezone != "" {
		cfg.Timezone = *timezone
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	strategyCfg := domain.StrategyConfig{
		InitialCapital:   *initialCapital,
		BuildLevels:      *buildLevels,
		ProfitLevels:     *profitLevels,
		MaxPositionRatio: *maxPositionRatio,
		BuyDrop:          *buyDrop,
		SellRise:         *sellRise,
		LevelSpread:      *levelSpread,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	eng, err := engine.New(strategyCfg, engine.WithLocation(loc))
	if err != nil {
		logger.Fatalf("invalid strategy config: %v", err)
	}

	// Bar source: websocket feed if configured, REST polling otherwise.
	var src live.BarSource
	if cfg.FeedEndpoint != "" {
		feed, err := ingestion.NewFeed(ctx, cfg.FeedEndpoint, cfg.Symbol, nil)
		if err != nil {
			logger.Fatalf("connect to feed: %v", err)
		}
		defer feed.Close()
		feedSrc := live.NewFeedSource(feed.Bars())
		defer feedSrc.Stop()
		src = feedSrc
		logger.Printf("Bar source: feed %s", cfg.FeedEndpoint)
	} else {
		src = ingestion.NewAggsClient("", cfg.APIKey)
		logger.Printf("Bar source: REST polling every %s", cfg.PollInterval)
	}

	// Signal store: Postgres if configured, memory otherwise.
	var signalStore storage.SignalStore
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		signalStore = pgstore.NewSignalStore(pool)
	} else {
		logger.Println("No POSTGRES_DSN set, signals kept in memory only")
		signalStore = memory.NewSignalStore()
	}

	adapter := execution.NewPaperAdapter()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
	go func() {
		logger.Printf("Metrics listening on %s", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	driver := live.NewDriver(cfg.Symbol, eng, src, adapter, logger,
		live.WithSignalStore(signalStore),
		live.WithPollInterval(cfg.PollInterval),
	)

	logger.Printf("Live session started: symbol=%s adapter=%s", cfg.Symbol, adapter.Name())
	if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("live session failed: %v", err)
	}
	logger.Println("Live session stopped")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
