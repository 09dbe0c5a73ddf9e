package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
)

var errUpstreamDown = errors.New("upstream down")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeFeed answers from prices; tokens absent from prices fail.
type fakeFeed struct {
	mu     sync.Mutex
	prices map[domain.TokenID]decimal.Decimal
	calls  map[domain.TokenID]int
	total  atomic.Int64
	block  chan struct{}
}

func newFakeFeed(prices map[domain.TokenID]decimal.Decimal) *fakeFeed {
	return &fakeFeed{prices: prices, calls: map[domain.TokenID]int{}}
}

func (f *fakeFeed) FetchPrice(_ context.Context, t domain.TokenID) (decimal.Decimal, error) {
	f.total.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[t]++
	p, ok := f.prices[t]
	if !ok {
		return decimal.Zero, errUpstreamDown
	}
	return p, nil
}

func (f *fakeFeed) callsFor(t domain.TokenID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[t]
}

type fakeMirror struct {
	mu     sync.Mutex
	quotes map[domain.TokenID]domain.Quote
	stored int
	err    error
}

func (m *fakeMirror) Load(_ context.Context, t domain.TokenID) (domain.Quote, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Quote{}, false, m.err
	}
	q, ok := m.quotes[t]
	return q, ok, nil
}

func (m *fakeMirror) Store(_ context.Context, q domain.Quote, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quotes == nil {
		m.quotes = map[domain.TokenID]domain.Quote{}
	}
	m.quotes[q.Token] = q
	m.stored++
	return m.err
}

type fakeRecorder struct {
	mu     sync.Mutex
	quotes []domain.Quote
}

func (r *fakeRecorder) Record(q domain.Quote) {
	r.mu.Lock()
	r.quotes = append(r.quotes, q)
	r.mu.Unlock()
}

type panicLookup struct{}

func (panicLookup) Get(context.Context, domain.TokenID) domain.Lookup { panic("boom") }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
