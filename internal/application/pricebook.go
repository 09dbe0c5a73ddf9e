package application

import (
	"sync"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceSource tells where a PriceBook value came from.
type PriceSource string

const (
	SourceDefault    PriceSource = "default"
	SourceBulk       PriceSource = "bulk"
	SourceIndividual PriceSource = "individual"
)

// PriceState is the per-token view held by a PriceBook.
// Stale means the most recent poll for the token failed and Price is the last known value.
type PriceState struct {
	Price     decimal.Decimal
	Source    PriceSource
	Stale     bool
	UpdatedAt time.Time
}

// PriceBook is the process-wide price state read by consumers. Reads never block
// on network I/O and always return a usable price.
type PriceBook struct {
	mu     sync.RWMutex
	states map[domain.TokenID]PriceState
}

func NewPriceBook(defaults domain.PriceTable) *PriceBook {
	if defaults == nil {
		defaults = domain.DefaultPrices()
	}
	states := make(map[domain.TokenID]PriceState, len(defaults))
	for _, t := range domain.SupportedTokens() {
		states[t] = PriceState{Price: defaults.Price(t), Source: SourceDefault}
	}
	return &PriceBook{states: states}
}

func (b *PriceBook) Price(t domain.TokenID) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.states[t].Price
}

func (b *PriceBook) State(t domain.TokenID) PriceState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.states[t]
}

// Snapshot copies the current state of every token.
func (b *PriceBook) Snapshot() map[domain.TokenID]PriceState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[domain.TokenID]PriceState, len(b.states))
	for k, v := range b.states {
		out[k] = v
	}
	return out
}

// Prices copies the current price of every token.
func (b *PriceBook) Prices() domain.PriceTable {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(domain.PriceTable, len(b.states))
	for k, v := range b.states {
		out[k] = v.Price
	}
	return out
}

// ApplyBulk stores every positive price from a bulk response and returns the
// tracked tokens the response did not cover.
func (b *PriceBook) ApplyBulk(prices map[domain.TokenID]decimal.Decimal, at time.Time) []domain.TokenID {
	b.mu.Lock()
	defer b.mu.Unlock()
	var missing []domain.TokenID
	for _, t := range domain.SupportedTokens() {
		p, ok := prices[t]
		if !ok || !p.IsPositive() {
			missing = append(missing, t)
			continue
		}
		b.states[t] = PriceState{Price: p, Source: SourceBulk, UpdatedAt: at}
	}
	return missing
}

// ApplyIndividual stores a price polled from a per-token endpoint.
func (b *PriceBook) ApplyIndividual(t domain.TokenID, price decimal.Decimal, at time.Time) bool {
	if !t.Valid() || !price.IsPositive() {
		return false
	}
	b.mu.Lock()
	b.states[t] = PriceState{Price: price, Source: SourceIndividual, UpdatedAt: at}
	b.mu.Unlock()
	return true
}

// MarkStale keeps the last value for t but flags it as not refreshed.
func (b *PriceBook) MarkStale(t domain.TokenID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[t]
	if !ok {
		return
	}
	s.Stale = true
	b.states[t] = s
}
