package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/config"
	"tokenprices-service/internal/domain"
	infraconfig "tokenprices-service/internal/infrastructure/config"
	httpserver "tokenprices-service/internal/infrastructure/http"
	"tokenprices-service/internal/infrastructure/httpx"
	"tokenprices-service/internal/infrastructure/logx"
	"tokenprices-service/internal/infrastructure/metrics"
	"tokenprices-service/internal/infrastructure/pg"
	"tokenprices-service/internal/infrastructure/priceclient"
	"tokenprices-service/internal/infrastructure/provider"
	redisstore "tokenprices-service/internal/infrastructure/redis"
	"tokenprices-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for HISTORY_BACKEND=pg")

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() (config.Config, error) { return config.Load() }

func ProvidePriceFeed(cfg config.Config) (application.PriceFeed, error) {
	switch cfg.Provider {
	case "coingecko":
		cg := &provider.CoinGecko{
			BaseURL: cfg.CoinGeckoAPIBase,
			APIKey:  cfg.CoinGeckoAPIKey,
			Client:  &http.Client{},
			Timeout: cfg.FetchTimeout,
		}
		if cfg.UpstreamRatePerMinute > 0 {
			// a bulk request fans out one call per token at once
			burst := len(domain.SupportedTokens())
			cg.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.UpstreamRatePerMinute)), burst)
		}
		return cg, nil
	case "fake":
		defaults, err := cfg.PriceDefaults()
		if err != nil {
			return nil, err
		}
		return provider.NewFake(defaults), nil
	default:
		return nil, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
}

// ProvideRedisClient returns nil unless CACHE_BACKEND=redis.
func ProvideRedisClient(ctx context.Context, cfg config.Config, log *zap.Logger) (*redis.Client, func(), error) {
	if cfg.CacheBackend != "redis" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// the cache works without the mirror; readyz reports the outage
		log.Warn("redis.unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cleanup := func() {
		log.Info("closing redis")
		_ = client.Close()
	}
	return client, cleanup, nil
}

func ProvideMirror(client *redis.Client) application.QuoteMirror {
	if client == nil {
		return nil
	}
	return redisstore.New(client, infraconfig.DefaultRedisOpTimeout)
}

// ProvideHistory starts the price history writer when HISTORY_BACKEND=pg.
// The returned cleanup stops the writer, flushes its buffer and closes the pool.
func ProvideHistory(ctx context.Context, cfg config.Config, log *zap.Logger) (application.QuoteRecorder, func(), error) {
	switch cfg.HistoryBackend {
	case "", "none":
		return nil, func() {}, nil
	case "pg":
	default:
		return nil, func() {}, fmt.Errorf("unsupported HISTORY_BACKEND=%q", cfg.HistoryBackend)
	}
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}

	w := worker.NewHistoryWorker(pg.NewHistoryRepo(db), cfg.Provider, cfg.HistoryBuffer, log)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(runCtx)
	}()

	cleanup := func() {
		cancel()
		<-done
		log.Info("closing pg")
		db.Close()
	}
	return w, cleanup, nil
}

func ProvidePriceCache(cfg config.Config, feed application.PriceFeed, mirror application.QuoteMirror, recorder application.QuoteRecorder, log *zap.Logger) (*application.PriceCache, error) {
	defaults, err := cfg.PriceDefaults()
	if err != nil {
		return nil, err
	}
	opts := []application.CacheOption{
		application.WithDefaults(defaults),
		application.WithFreshnessWindow(cfg.FreshnessWindow),
		application.WithCacheLogger(log),
	}
	if mirror != nil {
		opts = append(opts, application.WithMirror(mirror))
	}
	if recorder != nil {
		opts = append(opts, application.WithRecorder(recorder))
	}
	return application.NewPriceCache(feed, opts...), nil
}

func ProvideBulkLookup(cache *application.PriceCache) *application.BulkLookup {
	return application.NewBulkLookup(metrics.InstrumentedLookup{Next: cache}, cache.Defaults(), cache.FreshnessWindow())
}

func ProvideServer(cache *application.PriceCache, bulk *application.BulkLookup, client *redis.Client) *httpserver.Server {
	srv := httpserver.NewServer(metrics.InstrumentedLookup{Next: cache}, bulk)
	if client != nil {
		srv.SetReadyCheck(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}
	return srv
}

func ProvidePriceAPI(cfg config.Config, log *zap.Logger) application.PriceAPI {
	return priceclient.New(cfg.APIBaseURL, &httpx.Client{
		HTTP:       &http.Client{Timeout: cfg.RequestTimeout},
		MaxRetries: cfg.PollRetries,
		Log:        log,
	})
}

func ProvidePriceBook(cfg config.Config) (*application.PriceBook, error) {
	defaults, err := cfg.PriceDefaults()
	if err != nil {
		return nil, err
	}
	return application.NewPriceBook(defaults), nil
}

func ProvideWatcher(cfg config.Config, api application.PriceAPI, book *application.PriceBook, log *zap.Logger) *worker.PriceWatcher {
	return &worker.PriceWatcher{
		Client:    api,
		Book:      book,
		Tokens:    domain.SupportedTokens(),
		PollEvery: cfg.PollInterval,
		Log:       log.With(zap.String("worker", "watcher")),
	}
}
