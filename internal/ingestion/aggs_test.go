package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAggsClient_FetchRangePaginated(t *testing.T) {
	var calls atomic.Int32

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("missing apiKey on %s", r.URL)
		}

		n := calls.Add(1)
		resp := map[string]interface{}{
			"status": "OK",
			"results": []map[string]interface{}{
				{"t": int64(n) * 60000, "o": 100.0, "h": 100.5, "l": 99.5, "c": 100.2, "v": 1000.0},
			},
		}
		if n == 1 {
			// Second page, served without the key like the real API.
			resp["next_url"] = server.URL + "/v2/aggs/page2"
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewAggsClient(server.URL, "test-key")
	bars, err := client.FetchRange(context.Background(), "TQQQ", 1, "minute", "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("FetchRange failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("expected 2 page fetches, got %d", calls.Load())
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].TimestampMs != 60000 || bars[1].TimestampMs != 120000 {
		t.Errorf("unexpected timestamps: %d, %d", bars[0].TimestampMs, bars[1].TimestampMs)
	}
	if bars[0].Symbol != "TQQQ" || bars[0].Close != 100.2 {
		t.Errorf("bar mismatch: %+v", bars[0])
	}
}

func TestAggsClient_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"t":60000,"o":1,"h":1,"l":1,"c":1,"v":1}]}`)
	}))
	defer server.Close()

	client := NewAggsClient(server.URL, "test-key")
	bars, err := client.FetchRange(context.Background(), "TQQQ", 1, "minute", "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("FetchRange failed after retry: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestAggsClient_MissingAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	client := NewAggsClient("http://localhost:1", "")
	if _, err := client.FetchRange(context.Background(), "TQQQ", 1, "minute", "a", "b"); err == nil {
		t.Error("expected error without api key")
	}
}
