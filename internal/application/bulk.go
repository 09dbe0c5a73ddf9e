package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BulkLookup resolves several tokens through a PriceLookup at once. It keeps no state.
type BulkLookup struct {
	prices   PriceLookup
	defaults domain.PriceTable
	window   time.Duration
}

func NewBulkLookup(prices PriceLookup, defaults domain.PriceTable, window time.Duration) *BulkLookup {
	if defaults == nil {
		defaults = domain.DefaultPrices()
	}
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &BulkLookup{prices: prices, defaults: defaults.Clone(), window: window}
}

// NewBulkLookupFromCache shares the cache's defaults and freshness window.
func NewBulkLookupFromCache(c *PriceCache) *BulkLookup {
	return NewBulkLookup(c, c.Defaults(), c.FreshnessWindow())
}

func (b *BulkLookup) Defaults() domain.PriceTable    { return b.defaults.Clone() }
func (b *BulkLookup) FreshnessWindow() time.Duration { return b.window }
func (b *BulkLookup) Lookup(ctx context.Context, t domain.TokenID) domain.Lookup {
	return b.prices.Get(ctx, t)
}

// GetPrices validates the requested identifiers, drops unsupported ones and
// resolves the rest concurrently.
func (b *BulkLookup) GetPrices(ctx context.Context, requested []string) (domain.BulkResult, error) {
	if len(requested) == 0 {
		return domain.BulkResult{}, ErrMissingTokens
	}
	tokens := domain.FilterSupported(requested)
	if len(tokens) == 0 {
		return domain.BulkResult{}, ErrNoValidTokens
	}

	var (
		mu  sync.Mutex
		res = domain.BulkResult{
			Tokens:          tokens,
			Prices:          make(map[domain.TokenID]decimal.Decimal, len(tokens)),
			CacheAgeSeconds: make(map[domain.TokenID]int64, len(tokens)),
		}
	)
	g := new(errgroup.Group)
	for _, t := range tokens {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("%w: lookup %s: %v", ErrOrchestration, t, rec)
				}
			}()
			l := b.prices.Get(ctx, t)
			if !l.Price.IsPositive() {
				return fmt.Errorf("%w: non-positive price for %s", ErrOrchestration, t)
			}
			mu.Lock()
			res.Prices[t] = l.Price
			res.CacheAgeSeconds[t] = l.AgeSeconds()
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.BulkResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.BulkResult{}, fmt.Errorf("%w: %w", ErrOrchestration, err)
	}
	return res, nil
}
