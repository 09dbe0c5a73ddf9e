package config

import (
	"fmt"
	"strings"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Common
	Env      string `envconfig:"ENV" default:"local"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// API
	Port string `envconfig:"PORT" default:"8080"`
	// Price cache
	FreshnessWindow time.Duration     `envconfig:"FRESHNESS_WINDOW" default:"5m"`
	FetchTimeout    time.Duration     `envconfig:"FETCH_TIMEOUT" default:"10s"`
	DefaultPrices   map[string]string `envconfig:"DEFAULT_PRICES"`
	// Provider
	Provider              string `envconfig:"PROVIDER" default:"coingecko"`
	CoinGeckoAPIBase      string `envconfig:"COINGECKO_API_BASE" default:"https://api.coingecko.com/api/v3"`
	CoinGeckoAPIKey       string `envconfig:"COINGECKO_API_KEY"`
	UpstreamRatePerMinute int    `envconfig:"UPSTREAM_RATE_PER_MINUTE" default:"0"`
	// Shared quote mirror
	CacheBackend  string `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	// Price history
	HistoryBackend string `envconfig:"HISTORY_BACKEND" default:"none"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	HistoryBuffer  int    `envconfig:"HISTORY_BUFFER" default:"256"`
	// Watcher
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"5m"`
	PollRetries    int           `envconfig:"POLL_RETRIES" default:"2"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

// Load reads environment variables and applies defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if cfg.FreshnessWindow <= 0 {
		return Config{}, fmt.Errorf("FRESHNESS_WINDOW must be positive, got %s", cfg.FreshnessWindow)
	}
	if cfg.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", cfg.FetchTimeout)
	}
	if _, err := cfg.PriceDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PriceDefaults overlays DEFAULT_PRICES ("celo:0.3,ethereum:4000") on the built-in table.
func (c Config) PriceDefaults() (domain.PriceTable, error) {
	table := domain.DefaultPrices()
	for k, v := range c.DefaultPrices {
		t, ok := domain.ParseTokenID(strings.ToLower(k))
		if !ok {
			return nil, fmt.Errorf("DEFAULT_PRICES: %w: %q", domain.ErrUnsupportedToken, k)
		}
		p, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("DEFAULT_PRICES: %s: %w", k, err)
		}
		table[t] = p
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("DEFAULT_PRICES: %w", err)
	}
	return table, nil
}
