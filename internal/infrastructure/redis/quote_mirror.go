package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const keyPrefix = "tokenprices:quote:"

// QuoteMirror keeps the latest live quote per token in Redis so that replicas
// can share one upstream fetch per freshness window.
type QuoteMirror struct {
	Client  *redis.Client
	Timeout time.Duration
}

var _ application.QuoteMirror = (*QuoteMirror)(nil)

type storedQuote struct {
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
}

func New(client *redis.Client, timeout time.Duration) *QuoteMirror {
	return &QuoteMirror{Client: client, Timeout: timeout}
}

func key(token domain.TokenID) string { return keyPrefix + string(token) }

func (m *QuoteMirror) Load(ctx context.Context, token domain.TokenID) (domain.Quote, bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	raw, err := m.Client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, err
	}
	var sq storedQuote
	if err := json.Unmarshal(raw, &sq); err != nil {
		return domain.Quote{}, false, fmt.Errorf("decode quote %s: %w", token, err)
	}
	if !sq.Price.IsPositive() {
		return domain.Quote{}, false, nil
	}
	return domain.Quote{Token: token, Price: sq.Price, ObservedAt: sq.ObservedAt}, true, nil
}

// Store writes q with the given ttl. A non-positive ttl is a no-op.
func (m *QuoteMirror) Store(ctx context.Context, q domain.Quote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(storedQuote{Price: q.Price, ObservedAt: q.ObservedAt.UTC()})
	if err != nil {
		return err
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	return m.Client.Set(ctx, key(q.Token), raw, ttl).Err()
}

func (m *QuoteMirror) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.Timeout)
}
