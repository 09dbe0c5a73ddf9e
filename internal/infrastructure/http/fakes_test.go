package httpserver

import (
	"context"
	"sync"
	"time"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
)

var _ application.PriceLookup = (*stubLookup)(nil)

// stubLookup answers from a fixed table and can be told to panic.
type stubLookup struct {
	mu      sync.Mutex
	results map[domain.TokenID]domain.Lookup
	panics  bool
	calls   int
}

func (s *stubLookup) Get(_ context.Context, t domain.TokenID) domain.Lookup {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.panics {
		panic("lookup exploded")
	}
	return s.results[t]
}

func fixedClock() time.Time { return time.Date(2026, 4, 1, 10, 20, 30, 456_000_000, time.UTC) }

func newTestServer(lookup application.PriceLookup) (*Server, *application.BulkLookup) {
	bulk := application.NewBulkLookup(lookup, domain.DefaultPrices(), 5*time.Minute)
	srv := NewServer(lookup, bulk)
	srv.now = fixedClock
	return srv, bulk
}
