package application

import (
	"context"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceFeed is the upstream oracle. Implementations make exactly one attempt per call.
type PriceFeed interface {
	FetchPrice(ctx context.Context, token domain.TokenID) (decimal.Decimal, error)
}

// PriceLookup serves a price for a supported token. It never fails.
type PriceLookup interface {
	Get(ctx context.Context, token domain.TokenID) domain.Lookup
}

// QuoteMirror shares fresh quotes between processes. Entries expire with the freshness window.
type QuoteMirror interface {
	Load(ctx context.Context, token domain.TokenID) (domain.Quote, bool, error)
	Store(ctx context.Context, q domain.Quote, ttl time.Duration) error
}

// QuoteRecorder receives every quote obtained from the upstream feed.
// Record must not block the caller.
type QuoteRecorder interface {
	Record(q domain.Quote)
}

type QuoteHistoryRepo interface {
	AppendHistory(ctx context.Context, h domain.QuoteHistory) error
}

// PriceAPI is the watcher's view of the HTTP price endpoints.
type PriceAPI interface {
	FetchBulk(ctx context.Context, tokens []domain.TokenID) (map[domain.TokenID]decimal.Decimal, error)
	FetchOne(ctx context.Context, token domain.TokenID) (decimal.Decimal, error)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
