package worker

import (
	"context"
	"time"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"

	"go.uber.org/zap"
)

var _ application.Worker = (*PriceWatcher)(nil)

// PriceWatcher keeps a PriceBook current by polling the price API. The bulk
// endpoint is tried first; tokens it does not cover are fetched one by one.
type PriceWatcher struct {
	Client    application.PriceAPI
	Book      *application.PriceBook
	Tokens    []domain.TokenID
	PollEvery time.Duration
	Log       *zap.Logger
	// Notify, when set, receives a snapshot after every poll.
	Notify func(map[domain.TokenID]application.PriceState)

	now func() time.Time
}

func (w *PriceWatcher) Start(ctx context.Context) {
	log := w.logger()
	if w.PollEvery <= 0 {
		w.PollEvery = 5 * time.Minute
	}
	log.Info("price_watcher.started", zap.Duration("poll_every", w.PollEvery))

	w.Poll(ctx)

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("price_watcher.stopped")
			return
		case <-t.C:
			w.Poll(ctx)
		}
	}
}

// Poll runs one refresh cycle. Failures leave the previous prices in place.
func (w *PriceWatcher) Poll(ctx context.Context) {
	log := w.logger()
	tokens := w.tokens()
	at := w.clock()

	prices, err := w.Client.FetchBulk(ctx, tokens)
	var pending []domain.TokenID
	if err != nil {
		log.Warn("price_watcher.bulk_failed", zap.Error(err))
		pending = tokens
	} else {
		missing := make(map[domain.TokenID]bool, len(tokens))
		for _, t := range w.Book.ApplyBulk(prices, at) {
			missing[t] = true
		}
		for _, t := range tokens {
			if missing[t] {
				pending = append(pending, t)
			}
		}
	}

	for _, t := range pending {
		if ctx.Err() != nil {
			return
		}
		p, err := w.Client.FetchOne(ctx, t)
		if err != nil || !w.Book.ApplyIndividual(t, p, at) {
			log.Warn("price_watcher.token_failed", zap.String("token", string(t)), zap.Error(err))
			w.Book.MarkStale(t)
		}
	}

	if w.Notify != nil {
		w.Notify(w.Book.Snapshot())
	}
}

func (w *PriceWatcher) tokens() []domain.TokenID {
	if len(w.Tokens) == 0 {
		return domain.SupportedTokens()
	}
	return w.Tokens
}

func (w *PriceWatcher) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

func (w *PriceWatcher) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}
