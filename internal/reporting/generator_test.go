package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
	"boundary-trader/internal/storage/memory"
)

func seedRun(t *testing.T, runs *memory.RunStore, signals *memory.SignalStore) string {
	t.Helper()
	ctx := context.Background()

	run := &domain.RunSummary{
		RunID:       "run-1",
		Symbol:      "TQQQ",
		Config:      domain.DefaultConfig(),
		BarCount:    16,
		TradeCount:  3,
		FinalValue:  20050.58,
		TotalReturn: 0.25,
		OpenAtEnd:   true,
	}
	if err := runs.Insert(ctx, run); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	entry := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC).UnixMilli()
	exit := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC).UnixMilli()
	reentry := time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC).UnixMilli()
	sigs := []*domain.TradeSignal{
		{RunID: "run-1", Seq: 0, TimestampMs: entry, Side: domain.SideBuy, Price: 98.85, Quantity: 40.46, Level: 1},
		{RunID: "run-1", Seq: 1, TimestampMs: exit, Side: domain.SideSell, Price: 100.10, Quantity: 40.46, Level: 1},
		{RunID: "run-1", Seq: 2, TimestampMs: reentry, Side: domain.SideBuy, Price: 99.00, Quantity: 40.51, Level: 1},
	}
	if err := signals.InsertBulk(ctx, sigs); err != nil {
		t.Fatalf("seed signals: %v", err)
	}

	return run.RunID
}

func TestGenerator_Generate(t *testing.T) {
	runs := memory.NewRunStore()
	signals := memory.NewSignalStore()
	runID := seedRun(t, runs, signals)

	fixed := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(runs, signals, time.UTC).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(context.Background(), runID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.GeneratedAt != fixed {
		t.Errorf("clock not used: %v", report.GeneratedAt)
	}
	if report.Run.Symbol != "TQQQ" {
		t.Errorf("run mismatch: %+v", report.Run)
	}
	if len(report.Signals) != 3 {
		t.Fatalf("expected 3 signal rows, got %d", len(report.Signals))
	}
	if report.Signals[0].Time != "2024-01-02 01:00:00" {
		t.Errorf("time formatting: %q", report.Signals[0].Time)
	}

	if len(report.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(report.Trades))
	}
	closed := report.Trades[0]
	if !closed.Closed || closed.ExitPrice != 100.10 || closed.ExitLevel != 1 {
		t.Errorf("closed trade mismatch: %+v", closed)
	}
	wantPct := (100.10 - 98.85) / 98.85 * 100
	if diff := closed.ProfitPct - wantPct; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("profit pct: got %v, want %v", closed.ProfitPct, wantPct)
	}
	if report.Trades[1].Closed {
		t.Errorf("trailing entry should be open: %+v", report.Trades[1])
	}
}

func TestGenerator_RunNotFound(t *testing.T) {
	gen := NewGenerator(memory.NewRunStore(), memory.NewSignalStore(), nil)

	_, err := gen.Generate(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	runs := memory.NewRunStore()
	signals := memory.NewSignalStore()
	runID := seedRun(t, runs, signals)

	gen := NewGenerator(runs, signals, time.UTC)
	report, err := gen.Generate(context.Background(), runID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	for _, want := range []string{
		"# Run Report run-1",
		"| Symbol | TQQQ |",
		"| Final Value | 20050.58 |",
		"| Open Position At End | true |",
		"## Trades",
		"open",
		"| 0 | 2024-01-02 01:00:00 | buy | 98.85 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	rows := []SignalRow{
		{Seq: 0, Time: "2024-01-02 01:00:00", Side: "buy", Price: 98.85, Quantity: 40.46, Level: 1},
		{Seq: 1, Time: "2024-01-02 05:00:00", Side: "sell", Price: 100.10, Quantity: 40.46, Level: 5},
	}

	csv := RenderCSV(rows)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "seq,time,side,price,quantity,level" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "1,2024-01-02 05:00:00,sell,") {
		t.Errorf("unexpected row: %q", lines[2])
	}
}
