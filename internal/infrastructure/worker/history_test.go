package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memHistory struct {
	mu   sync.Mutex
	rows []domain.QuoteHistory
	err  error
}

func (m *memHistory) AppendHistory(_ context.Context, h domain.QuoteHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, h)
	return nil
}

func (m *memHistory) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func TestHistoryWorker_WritesRecordedQuotes(t *testing.T) {
	repo := &memHistory{}
	w := NewHistoryWorker(repo, "coingecko", 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Start(ctx); close(done) }()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w.Record(domain.Quote{Token: domain.Celo, Price: decimal.RequireFromString("0.31"), ObservedAt: at})

	require.Eventually(t, func() bool { return repo.len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Equal(t, domain.Celo, repo.rows[0].Token)
	require.Equal(t, "coingecko", repo.rows[0].Source)
	require.True(t, repo.rows[0].ObservedAt.Equal(at))
}

func TestHistoryWorker_RecordDropsWhenFull(t *testing.T) {
	repo := &memHistory{}
	w := NewHistoryWorker(repo, "coingecko", 1, nil)
	q := domain.Quote{Token: domain.Ethereum, Price: decimal.NewFromInt(4000), ObservedAt: time.Now()}

	w.Record(q)
	w.Record(q) // buffer full, must not block

	require.Len(t, w.jobs, 1)
}

func TestHistoryWorker_DrainsOnStop(t *testing.T) {
	repo := &memHistory{}
	w := NewHistoryWorker(repo, "coingecko", 4, nil)
	for i := 0; i < 3; i++ {
		w.Record(domain.Quote{Token: domain.GoodDollar, Price: decimal.NewFromInt(1), ObservedAt: time.Unix(int64(i), 0)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	require.Equal(t, 3, repo.len())
}

func TestHistoryWorker_RepoErrorIsLogged(t *testing.T) {
	repo := &memHistory{err: errors.New("db down")}
	w := NewHistoryWorker(repo, "coingecko", 1, nil)
	w.Record(domain.Quote{Token: domain.Celo, Price: decimal.NewFromInt(1), ObservedAt: time.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NotPanics(t, func() { w.Start(ctx) })
	require.Zero(t, repo.len())
}
