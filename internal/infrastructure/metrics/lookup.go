package metrics

import (
	"context"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
)

// InstrumentedLookup counts cache hits and misses of the wrapped lookup.
type InstrumentedLookup struct {
	Next application.PriceLookup
}

var _ application.PriceLookup = InstrumentedLookup{}

func (l InstrumentedLookup) Get(ctx context.Context, token domain.TokenID) domain.Lookup {
	res := l.Next.Get(ctx, token)
	RecordCacheLookup(string(token), res.Cached)
	return res
}
