// Package ingestion acquires OHLC bars: from CSV exports, from a
// polygon-style aggregates REST API, and from a live websocket feed.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"boundary-trader/internal/domain"
)

// csvTimeLayout is the bar timestamp format used by the CSV exports.
const csvTimeLayout = "2006-01-02 15:04:05"

// LoadCSV reads bars for one symbol from a CSV file with columns
// time, open, high, low, close, volume. A header row and a UTF-8 BOM
// are tolerated; rows keep file order.
func LoadCSV(path, symbol string, loc *time.Location) ([]*domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	if loc == nil {
		loc = time.UTC
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []*domain.Bar
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		line++

		if len(record) < 6 {
			return nil, fmt.Errorf("csv %s line %d: expected 6 columns, got %d", path, line, len(record))
		}

		// Exports from pandas carry a BOM on the first cell.
		record[0] = strings.TrimPrefix(record[0], "\ufeff")

		ts, err := time.ParseInLocation(csvTimeLayout, record[0], loc)
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("csv %s line %d: parse time %q: %w", path, line, record[0], err)
		}

		fields := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("csv %s line %d: parse column %d: %w", path, line, i+2, err)
			}
			fields[i] = v
		}

		bars = append(bars, &domain.Bar{
			Symbol:      symbol,
			TimestampMs: ts.UnixMilli(),
			Open:        fields[0],
			High:        fields[1],
			Low:         fields[2],
			Close:       fields[3],
			Volume:      fields[4],
		})
	}

	return bars, nil
}

// LoadCSVFiles loads and merges several CSV files of the same symbol.
// The result is sorted chronologically with duplicate timestamps dropped.
func LoadCSVFiles(paths []string, symbol string, loc *time.Location) ([]*domain.Bar, error) {
	var all []*domain.Bar
	for _, path := range paths {
		bars, err := LoadCSV(path, symbol, loc)
		if err != nil {
			return nil, err
		}
		all = append(all, bars...)
	}
	return MergeBars(all), nil
}

// MergeBars sorts bars chronologically and drops duplicate timestamps,
// keeping the first occurrence.
func MergeBars(bars []*domain.Bar) []*domain.Bar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].TimestampMs < bars[j].TimestampMs
	})

	out := bars[:0]
	var lastMs int64 = -1
	for _, b := range bars {
		if b.TimestampMs == lastMs {
			continue
		}
		out = append(out, b)
		lastMs = b.TimestampMs
	}
	return out
}
