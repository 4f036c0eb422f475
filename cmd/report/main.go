package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boundary-trader/internal/reporting"
	pgstore "boundary-trader/internal/storage/postgres"
)

func main() {
	runID := flag.String("run-id", "", "Run ID to report on (required)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	format := flag.String("format", "markdown", "Output format: markdown or csv")
	timezone := flag.String("timezone", "UTC", "Time zone for rendered timestamps")
	outFile := flag.String("out", "", "Output file (default stdout)")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *runID == "" {
		logger.Fatal("--run-id is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *format != "markdown" && *format != "csv" {
		logger.Fatalf("unknown format %q", *format)
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
		<-sigCh
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	gen := reporting.NewGenerator(pgstore.NewRunStore(pool), pgstore.NewSignalStore(pool), loc)

	report, err := gen.Generate(ctx, *runID)
	if err != nil {
		logger.Fatalf("generate report: %v", err)
	}

	var rendered string
	switch *format {
	case "markdown":
		rendered = reporting.RenderMarkdown(report)
	case "csv":
		rendered = reporting.RenderCSV(report.Signals)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(rendered), 0o644); err != nil {
			logger.Fatalf("write output: %v", err)
		}
		logger.Printf("Report written to %s", *outFile)
		return
	}
	fmt.Print(rendered)
}
