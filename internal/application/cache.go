package application

import (
	"context"
	"sync"
	"time"

	"tokenprices-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultFreshnessWindow = 5 * time.Minute

var _ PriceLookup = (*PriceCache)(nil)

// PriceCache holds one quote per supported token and refreshes it through the
// upstream feed once it leaves the freshness window. A failed refresh stores the
// default price, which also restarts the window.
type PriceCache struct {
	feed     PriceFeed
	defaults domain.PriceTable
	window   time.Duration
	clock    Clock
	log      *zap.Logger
	mirror   QuoteMirror
	recorder QuoteRecorder

	mu      sync.RWMutex
	entries map[domain.TokenID]domain.Quote
	flights singleflight.Group
}

type CacheOption func(*PriceCache)

func WithCacheClock(c Clock) CacheOption { return func(p *PriceCache) { p.clock = c } }
func WithFreshnessWindow(d time.Duration) CacheOption {
	return func(p *PriceCache) { p.window = d }
}
func WithDefaults(t domain.PriceTable) CacheOption {
	return func(p *PriceCache) { p.defaults = t.Clone() }
}
func WithCacheLogger(l *zap.Logger) CacheOption { return func(p *PriceCache) { p.log = l } }
func WithMirror(m QuoteMirror) CacheOption      { return func(p *PriceCache) { p.mirror = m } }
func WithRecorder(r QuoteRecorder) CacheOption  { return func(p *PriceCache) { p.recorder = r } }

func NewPriceCache(feed PriceFeed, opts ...CacheOption) *PriceCache {
	c := &PriceCache{
		feed:     feed,
		defaults: domain.DefaultPrices(),
		window:   DefaultFreshnessWindow,
		entries:  make(map[domain.TokenID]domain.Quote),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.window <= 0 {
		c.window = DefaultFreshnessWindow
	}
	return c
}

func (c *PriceCache) FreshnessWindow() time.Duration { return c.window }

// Defaults returns a copy of the fallback table.
func (c *PriceCache) Defaults() domain.PriceTable { return c.defaults.Clone() }

// Get returns the cached quote while fresh, otherwise refreshes it. Concurrent
// callers for the same stale token share a single upstream call.
func (c *PriceCache) Get(ctx context.Context, token domain.TokenID) domain.Lookup {
	if l, ok := c.cached(token); ok {
		return l
	}
	v, _, _ := c.flights.Do(string(token), func() (any, error) {
		if l, ok := c.cached(token); ok {
			return l, nil
		}
		return c.refresh(context.WithoutCancel(ctx), token), nil
	})
	return v.(domain.Lookup)
}

func (c *PriceCache) cached(token domain.TokenID) (domain.Lookup, bool) {
	now := c.clock.Now()
	c.mu.RLock()
	q, ok := c.entries[token]
	c.mu.RUnlock()
	if !ok || !q.FreshAt(now, c.window) {
		return domain.Lookup{}, false
	}
	return domain.Lookup{Token: token, Price: q.Price, Cached: true, Age: q.Age(now)}, true
}

func (c *PriceCache) refresh(ctx context.Context, token domain.TokenID) domain.Lookup {
	now := c.clock.Now()
	log := c.log.With(zap.String("token", string(token)))

	if q, ok := c.fromMirror(ctx, token, now); ok {
		c.put(q)
		log.Debug("price_cache.mirror_hit", zap.Duration("age", q.Age(now)))
		return domain.Lookup{Token: token, Price: q.Price, Cached: true, Age: q.Age(now)}
	}

	price, live := fetchUpstreamPrice(ctx, c.feed, log, token, c.defaults.Price(token))
	q := domain.Quote{Token: token, Price: price, ObservedAt: now}
	c.put(q)
	log.Info("price_cache.refresh", zap.String("price", price.String()), zap.Bool("live", live))

	if live {
		if c.recorder != nil {
			c.recorder.Record(q)
		}
		if c.mirror != nil {
			if err := c.mirror.Store(ctx, q, c.window); err != nil {
				log.Warn("price_cache.mirror_store_failed", zap.Error(err))
			}
		}
	}
	return domain.Lookup{Token: token, Price: price, Cached: false}
}

func (c *PriceCache) fromMirror(ctx context.Context, token domain.TokenID, now time.Time) (domain.Quote, bool) {
	if c.mirror == nil {
		return domain.Quote{}, false
	}
	q, ok, err := c.mirror.Load(ctx, token)
	if err != nil {
		c.log.Warn("price_cache.mirror_load_failed", zap.String("token", string(token)), zap.Error(err))
		return domain.Quote{}, false
	}
	if !ok || !q.Price.IsPositive() || !q.FreshAt(now, c.window) {
		return domain.Quote{}, false
	}
	return q, true
}

func (c *PriceCache) put(q domain.Quote) {
	c.mu.Lock()
	c.entries[q.Token] = q
	c.mu.Unlock()
}
