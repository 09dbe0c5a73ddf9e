package provider

import (
	"context"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.PriceFeed.
var _ application.PriceFeed = (*Fake)(nil)

// Fake serves a fixed table; tokens missing from it fail like an unreachable upstream.
type Fake struct {
	prices domain.PriceTable
}

func NewFake(prices domain.PriceTable) *Fake { return &Fake{prices: prices.Clone()} }

func (f *Fake) FetchPrice(_ context.Context, token domain.TokenID) (decimal.Decimal, error) {
	p, ok := f.prices[token]
	if !ok {
		return decimal.Zero, ErrUpstreamUnavailable
	}
	return p, nil
}
