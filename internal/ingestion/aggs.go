package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"boundary-trader/internal/domain"
)

// APIKeyEnv is the environment variable holding the aggregates API key.
const APIKeyEnv = "POLYGON_API_KEY"

// DefaultAggsBaseURL is the production aggregates endpoint.
const DefaultAggsBaseURL = "https://api.polygon.io"

// backfillChunkDays keeps each window under the 50k row page limit
// (about 758 one-minute bars per trading day).
const backfillChunkDays = 65

// AggsClient fetches OHLC aggregates from a polygon-style REST API.
type AggsClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewAggsClient creates a client for the given endpoint. An empty apiKey
// falls back to the POLYGON_API_KEY environment variable.
func NewAggsClient(baseURL, apiKey string) *AggsClient {
	if baseURL == "" {
		baseURL = DefaultAggsBaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}

	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &AggsClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		rateLimiter: limiter,
	}
}

type aggsResponse struct {
	Status  string    `json:"status"`
	Results []aggsBar `json:"results"`
	NextURL string    `json:"next_url"`
}

type aggsBar struct {
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// FetchRange fetches all aggregates for a symbol between two dates
// (YYYY-MM-DD, inclusive), following pagination.
func (c *AggsClient) FetchRange(ctx context.Context, symbol string, multiplier int, timespan, from, to string) ([]*domain.Bar, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key not set (see %s)", APIKeyEnv)
	}

	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s?adjusted=true&sort=asc&limit=50000",
		c.baseURL, url.PathEscape(symbol), multiplier, timespan, from, to)

	var bars []*domain.Bar
	for reqURL != "" {
		resp, err := c.fetchPage(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		for _, a := range resp.Results {
			bars = append(bars, &domain.Bar{
				Symbol:      symbol,
				TimestampMs: a.Timestamp,
				Open:        a.Open,
				High:        a.High,
				Low:         a.Low,
				Close:       a.Close,
				Volume:      a.Volume,
			})
		}

		reqURL = resp.NextURL
	}

	return bars, nil
}

// Backfill fetches minute aggregates over a long period in chunks small
// enough to stay under the page limit, then merges and dedups the result.
func (c *AggsClient) Backfill(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Bar, error) {
	var all []*domain.Bar

	for current := from; current.Before(to); {
		chunkEnd := current.AddDate(0, 0, backfillChunkDays)
		if chunkEnd.After(to) {
			chunkEnd = to
		}

		bars, err := c.FetchRange(ctx, symbol, 1, "minute",
			current.Format("2006-01-02"), chunkEnd.Format("2006-01-02"))
		if err != nil {
			return nil, fmt.Errorf("backfill %s from %s: %w", symbol, current.Format("2006-01-02"), err)
		}
		all = append(all, bars...)

		current = chunkEnd
	}

	return MergeBars(all), nil
}

// RecentBars fetches today's minute bars (session clock UTC) and returns
// those newer than sinceMs. This is the polling path for live sessions.
func (c *AggsClient) RecentBars(ctx context.Context, symbol string, sinceMs int64) ([]*domain.Bar, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -1).Format("2006-01-02")
	to := now.Format("2006-01-02")

	bars, err := c.FetchRange(ctx, symbol, 1, "minute", from, to)
	if err != nil {
		return nil, err
	}

	out := bars[:0]
	for _, b := range bars {
		if b.TimestampMs > sinceMs {
			out = append(out, b)
		}
	}
	return out, nil
}

// fetchPage performs one GET with rate limiting and retry on failure.
func (c *AggsClient) fetchPage(ctx context.Context, reqURL string) (*aggsResponse, error) {
	maxRetries := 3
	backoff := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.doGet(ctx, reqURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return nil, lastErr
}

func (c *AggsClient) doGet(ctx context.Context, reqURL string) (*aggsResponse, error) {
	// next_url pages come back without the key
	withKey, err := appendAPIKey(reqURL, c.apiKey)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, withKey, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregates request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregates request: status %d: %s", httpResp.StatusCode, string(body))
	}

	var resp aggsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &resp, nil
}

func appendAPIKey(reqURL, apiKey string) (string, error) {
	u, err := url.Parse(reqURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	if q.Get("apiKey") == "" {
		q.Set("apiKey", apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
