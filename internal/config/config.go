// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the bot process.
// Values are populated by Load from environment variables.
type Config struct {
	// TelegramToken is the Bot API token. Required.
	TelegramToken string

	// TransitAPIURL is the base URL of the transit API.
	// Defaults to the public v5 endpoint.
	TransitAPIURL string

	// DatabaseURL selects the favorites backend: postgres://... or
	// sqlite://path. Defaults to "sqlite://transit-bot.db".
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// OpsPort is the TCP port of the health/debug HTTP server. Defaults to "8080".
	OpsPort string

	// CacheTTL is how long the route and stop directory stays fresh. Defaults to 3h.
	CacheTTL time.Duration

	// SessionTTL is how long an unanswered save offer is kept. Defaults to 15m.
	SessionTTL time.Duration

	// UpstreamTimeout bounds each transit API request. Defaults to 15s.
	UpstreamTimeout time.Duration

	// Location is the zone schedules are read in. TIMEZONE names an IANA
	// zone; unset means the host's local zone.
	Location *time.Location

	// SearchLimit caps the stops shown for one query. Defaults to 20.
	SearchLimit int
}

const defaultTransitAPIURL = "https://api.tgt72.ru/api/v5/"

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable that does not parse.
func Load() (Config, error) {
	cfg := Config{
		TransitAPIURL: getEnv("TRANSIT_API_URL", defaultTransitAPIURL),
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://transit-bot.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		OpsPort:       getEnv("OPS_PORT", "8080"),
	}

	var missing []string

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 3*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}

	cfg.Location = time.Local
	if name := os.Getenv("TIMEZONE"); name != "" {
		if cfg.Location, err = time.LoadLocation(name); err != nil {
			return Config{}, fmt.Errorf("TIMEZONE: %w", err)
		}
	}

	cfg.SearchLimit = 20
	if v := os.Getenv("SEARCH_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("SEARCH_LIMIT: must be a positive integer, got %q", v)
		}
		cfg.SearchLimit = n
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses key with time.ParseDuration, returning fallback when unset.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: must be a positive duration, got %q", key, v)
	}
	return d, nil
}
