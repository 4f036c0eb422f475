package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boundary-trader/internal/backtest"
	"boundary-trader/internal/domain"
	"boundary-trader/internal/engine"
	"boundary-trader/internal/ingestion"
	"boundary-trader/internal/storage"
	chstore "boundary-trader/internal/storage/clickhouse"
	"boundary-trader/internal/storage/memory"
	"boundary-trader/internal/storage/migrations"
	pgstore "boundary-trader/internal/storage/postgres"
)

func main() {
	// Data source
	symbol := flag.String("symbol", "", "Symbol to backtest (required)")
	csvFiles := flag.String("csv", "", "Comma-separated CSV files to load bars from")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (bar store)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (runs and signals)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	fromMs := flag.Int64("from-ms", 0, "Start of bar range (unix ms, 0 = all)")
	toMs := flag.Int64("to-ms", 0, "End of bar range (unix ms, 0 = all)")
	timezone := flag.String("timezone", "UTC", "Session time zone for entry/exit hour gates")

	// Strategy parameters
	initialCapital := flag.Float64("initial-capital", 20000, "Initial capital")
	buildLevels := flag.Int("build-levels", 5, "Number of build ladder levels")
	profitLevels := flag.Int("profit-levels", 5, "Number of profit ladder levels")
	maxPositionRatio := flag.Float64("max-position-ratio", 0.20, "Capital fraction per entry")
	buyDrop := flag.Float64("buy-drop", 0.01, "Build ladder base offset below the average")
	sellRise := flag.Float64("sell-rise", 0.001, "Profit ladder base offset above the average")
	levelSpread := flag.Float64("level-spread", 0.001, "Spacing between adjacent ladder levels")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persist := flag.Bool("persist", false, "Persist run summary and signals")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *symbol == "" {
		logger.Fatal("--symbol is required")
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		logger.Fatalf("invalid timezone %q: %v", *timezone, err)
	}

	cfg := domain.StrategyConfig{
		InitialCapital:   *initialCapital,
		BuildLevels:      *buildLevels,
		ProfitLevels:     *profitLevels,
		MaxPositionRatio: *maxPositionRatio,
		BuyDrop:          *buyDrop,
		SellRise:         *sellRise,
		LevelSpread:      *levelSpread,
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid strategy config: %v", err)
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

	// Bar source: CSV files load into a memory store; otherwise ClickHouse.
	var barStore storage.BarStore
	switch {
	case *csvFiles != "":
		bars, err := ingestion.LoadCSVFiles(strings.Split(*csvFiles, ","), *symbol, loc)
		if err != nil {
			logger.Fatalf("load csv: %v", err)
		}
		logger.Printf("Loaded %d bars from CSV", len(bars))
		mem := memory.NewBarStore()
		if err := mem.InsertBulk(ctx, bars); err != nil {
			logger.Fatalf("stage bars: %v", err)
		}
		barStore = mem
	case *useMemory:
		logger.Fatal("--use-memory needs --csv to provide bars")
	default:
		if *clickhouseDSN == "" {
			logger.Fatal("--clickhouse-dsn or --csv is required")
		}
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		barStore = chstore.NewBarStore(conn)
	}

	// Result stores
	var runStore storage.RunStore
	var signalStore storage.SignalStore
	if *persist {
		if *postgresDSN != "" {
			pool, err := pgstore.NewPool(ctx, *postgresDSN)
			if err != nil {
				logger.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				logger.Fatalf("apply migrations: %v", err)
			}
			runStore = pgstore.NewRunStore(pool)
			signalStore = pgstore.NewSignalStore(pool)
		} else {
			logger.Println("--persist without --postgres-dsn keeps results in memory only")
			runStore = memory.NewRunStore()
			signalStore = memory.NewSignalStore()
		}
	}

	runner := backtest.NewRunner(barStore, signalStore, runStore, logger)

	logger.Printf("Running backtest: symbol=%s capital=%.2f levels=%d/%d",
		*symbol, cfg.InitialCapital, cfg.BuildLevels, cfg.ProfitLevels)

	var result *backtest.Result
	if *fromMs != 0 || *toMs != 0 {
		end := *toMs
		if end == 0 {
			end = time.Now().UnixMilli()
		}
		result, err = runner.RunRange(ctx, *symbol, *fromMs, end, cfg, engineOptions(loc)...)
	} else {
		result, err = runner.Run(ctx, *symbol, cfg, engineOptions(loc)...)
	}
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(struct {
			Summary domain.RunSummary    `json:"summary"`
			Signals []domain.TradeSignal `json:"signals"`
		}{result.Summary, result.Signals}, "", "  ")
		fmt.Println(string(output))
	} else {
		printSummary(result)
	}
}

func engineOptions(loc *time.Location) []engine.Option {
	if loc == nil || loc == time.UTC {
		return nil
	}
	return []engine.Option{engine.WithLocation(loc)}
}

// printSummary outputs the human-readable result banner.
func printSummary(r *backtest.Result) {
	s := r.Summary
	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Run ID:          %s\n", s.RunID)
	fmt.Printf("Symbol:          %s\n", s.Symbol)
	fmt.Printf("Bars:            %d\n", s.BarCount)
	fmt.Printf("Signals:         %d\n", s.TradeCount)
	fmt.Printf("Initial Capital: %.2f\n", s.Config.InitialCapital)
	fmt.Printf("Final Value:     %.2f\n", s.FinalValue)
	fmt.Printf("Total Return:    %.2f%%\n", s.TotalReturn)
	fmt.Printf("Open At End:     %v\n", s.OpenAtEnd)
}
