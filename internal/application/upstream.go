package application

import (
	"context"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fetchUpstreamPrice asks the feed once and absorbs every failure into fallback.
// ok is false when the fallback was returned.
func fetchUpstreamPrice(ctx context.Context, feed PriceFeed, log *zap.Logger, token domain.TokenID, fallback decimal.Decimal) (price decimal.Decimal, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("upstream.panic", zap.String("token", string(token)), zap.Any("error", rec))
			price, ok = fallback, false
		}
	}()
	if feed == nil {
		return fallback, false
	}
	p, err := feed.FetchPrice(ctx, token)
	if err != nil {
		log.Warn("upstream.fetch_failed",
			zap.String("token", string(token)),
			zap.String("fallback", fallback.String()),
			zap.Error(err),
		)
		return fallback, false
	}
	if !p.IsPositive() {
		log.Warn("upstream.invalid_price",
			zap.String("token", string(token)),
			zap.String("price", p.String()),
			zap.String("fallback", fallback.String()),
		)
		return fallback, false
	}
	return p, true
}
