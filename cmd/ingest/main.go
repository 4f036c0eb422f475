package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/ingestion"
	"boundary-trader/internal/observability"
	chstore "boundary-trader/internal/storage/clickhouse"
	"boundary-trader/internal/storage/migrations"
)

const dateLayout = "2006-01-02"

func main() {
	symbol := flag.String("symbol", "", "Symbol to ingest (required)")
	csvFiles := flag.String("csv", "", "Comma-separated CSV files to ingest")
	from := flag.String("from", "", "Backfill start date (YYYY-MM-DD)")
	to := flag.String("to", "", "Backfill end date (YYYY-MM-DD, default today)")
	apiKey := flag.String("api-key", "", "Aggregates API key (default $"+ingestion.APIKeyEnv+")")
	baseURL := flag.String("base-url", "", "Aggregates API base URL")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	timezone := flag.String("timezone", "UTC", "Time zone for CSV bar timestamps")

	flag.Parse()

	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *symbol == "" {
		logger.Fatal("--symbol is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}
	if *csvFiles == "" && *from == "" {
		logger.Fatal("either --csv or --from is required")
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		logger.Fatalf("invalid timezone %q: %v", *timezone, err)
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

	var bars []*domain.Bar
	if *csvFiles != "" {
		bars, err = ingestion.LoadCSVFiles(strings.Split(*csvFiles, ","), *symbol, loc)
		if err != nil {
			logger.Fatalf("load csv: %v", err)
		}
		logger.Printf("Loaded %d bars from CSV", len(bars))
	} else {
		fromDate, err := time.Parse(dateLayout, *from)
		if err != nil {
			logger.Fatalf("invalid --from date: %v", err)
		}
		toDate := time.Now().UTC()
		if *to != "" {
			toDate, err = time.Parse(dateLayout, *to)
			if err != nil {
				logger.Fatalf("invalid --to date: %v", err)
			}
		}

		client := ingestion.NewAggsClient(*baseURL, *apiKey)
		logger.Printf("Backfilling %s from %s to %s",
			*symbol, fromDate.Format(dateLayout), toDate.Format(dateLayout))
		bars, err = client.Backfill(ctx, *symbol, fromDate, toDate)
		if err != nil {
			logger.Fatalf("backfill: %v", err)
		}
		logger.Printf("Fetched %d bars", len(bars))
	}

	if len(bars) == 0 {
		logger.Println("Nothing to ingest")
		return
	}

	conn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("connect to clickhouse: %v", err)
	}
	defer conn.Close()

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	store := chstore.NewBarStore(conn)
	if err := store.InsertBulk(ctx, bars); err != nil {
		logger.Fatalf("insert bars: %v", err)
	}
	observability.RecordBarsIngested(len(bars))

	first := time.UnixMilli(bars[0].TimestampMs).UTC()
	last := time.UnixMilli(bars[len(bars)-1].TimestampMs).UTC()
	logger.Printf("Ingested %d bars for %s (%s .. %s)",
		len(bars), *symbol, first.Format(time.RFC3339), last.Format(time.RFC3339))
}
