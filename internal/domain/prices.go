package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceTable maps every supported token to a USD price.
type PriceTable map[TokenID]decimal.Decimal

// DefaultPrices is the last-resort table used when no quote is available.
func DefaultPrices() PriceTable {
	return PriceTable{
		Ethereum:   decimal.NewFromInt(4000),
		Celo:       decimal.RequireFromString("0.3"),
		GoodDollar: decimal.RequireFromString("0.00009189"),
	}
}

// Price returns the table entry for t, or zero when absent.
func (p PriceTable) Price(t TokenID) decimal.Decimal {
	return p[t]
}

// Clone returns an independent copy of p.
func (p PriceTable) Clone() PriceTable {
	out := make(PriceTable, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Validate checks that every supported token has a positive price.
func (p PriceTable) Validate() error {
	for _, t := range supportedTokens {
		v, ok := p[t]
		if !ok {
			return fmt.Errorf("%w: missing default for %s", ErrInvalidPrice, t)
		}
		if !v.IsPositive() {
			return fmt.Errorf("%w: default for %s must be positive, got %s", ErrInvalidPrice, t, v)
		}
	}
	return nil
}
