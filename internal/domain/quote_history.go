package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteHistory struct {
	ID         int64
	Token      TokenID
	Price      decimal.Decimal
	ObservedAt time.Time
	Source     string
	InsertedAt time.Time
}
