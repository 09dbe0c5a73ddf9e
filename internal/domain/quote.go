package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the cache entry for one token: a positive price and when it was observed.
type Quote struct {
	Token      TokenID
	Price      decimal.Decimal
	ObservedAt time.Time
}

// Age is the time elapsed since the quote was observed, never negative.
func (q Quote) Age(now time.Time) time.Duration {
	age := now.Sub(q.ObservedAt)
	if age < 0 {
		return 0
	}
	return age
}

// FreshAt reports whether the quote is still inside the freshness window.
func (q Quote) FreshAt(now time.Time, window time.Duration) bool {
	if q.ObservedAt.IsZero() {
		return false
	}
	return now.Sub(q.ObservedAt) < window
}

// Lookup is the result of a cache read.
type Lookup struct {
	Token  TokenID
	Price  decimal.Decimal
	Cached bool
	Age    time.Duration
}

// AgeSeconds is the whole number of seconds since the quote was observed.
func (l Lookup) AgeSeconds() int64 {
	return int64(l.Age / time.Second)
}

// BulkResult is built fresh for every bulk request.
type BulkResult struct {
	Tokens          []TokenID
	Prices          map[TokenID]decimal.Decimal
	CacheAgeSeconds map[TokenID]int64
}
