// Package live drives the strategy engine against a real-time bar source,
// forwarding signals to an execution adapter.
package live

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds live session settings sourced from the environment.
type Config struct {
	Symbol       string
	PollInterval time.Duration
	FeedEndpoint string
	APIKey       string
	PostgresDSN  string
	MetricsAddr  string
	Timezone     string
}

// LoadConfig reads a .env file if present, then the environment.
// Missing .env is not an error; the environment alone is enough.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return &Config{
		Symbol:       envOr("LIVE_SYMBOL", "TQQQ"),
		PollInterval: envDuration("LIVE_POLL_INTERVAL", 10*time.Second),
		FeedEndpoint: os.Getenv("LIVE_FEED_ENDPOINT"),
		APIKey:       os.Getenv("POLYGON_API_KEY"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		MetricsAddr:  envOr("METRICS_ADDR", ":9102"),
		Timezone:     envOr("LIVE_TIMEZONE", "UTC"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
