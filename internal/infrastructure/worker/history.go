package worker

import (
	"context"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
	infraconfig "tokenprices-service/internal/infrastructure/config"

	"go.uber.org/zap"
)

var (
	_ application.Worker        = (*HistoryWorker)(nil)
	_ application.QuoteRecorder = (*HistoryWorker)(nil)
)

// HistoryWorker persists upstream quotes off the request path. Record never
// blocks: when the buffer is full the quote is dropped and logged.
type HistoryWorker struct {
	repo   application.QuoteHistoryRepo
	source string
	jobs   chan domain.Quote
	log    *zap.Logger
}

func NewHistoryWorker(repo application.QuoteHistoryRepo, source string, buffer int, log *zap.Logger) *HistoryWorker {
	if buffer <= 0 {
		buffer = infraconfig.DefaultHistoryBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryWorker{
		repo:   repo,
		source: source,
		jobs:   make(chan domain.Quote, buffer),
		log:    log.With(zap.String("worker", "history")),
	}
}

func (w *HistoryWorker) Record(q domain.Quote) {
	select {
	case w.jobs <- q:
	default:
		w.log.Warn("history.dropped", zap.String("token", string(q.Token)))
	}
}

func (w *HistoryWorker) Start(ctx context.Context) {
	w.log.Info("history_worker.started")
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			w.log.Info("history_worker.stopped")
			return
		case q := <-w.jobs:
			w.write(ctx, q)
		}
	}
}

// drain flushes whatever is already buffered.
func (w *HistoryWorker) drain(ctx context.Context) {
	for {
		select {
		case q := <-w.jobs:
			w.write(ctx, q)
		default:
			return
		}
	}
}

func (w *HistoryWorker) write(ctx context.Context, q domain.Quote) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Warn("history.panic", zap.Any("r", r))
		}
	}()
	c, cancel := context.WithTimeout(ctx, infraconfig.DefaultHistoryWrite)
	defer cancel()
	err := w.repo.AppendHistory(c, domain.QuoteHistory{
		Token:      q.Token,
		Price:      q.Price,
		ObservedAt: q.ObservedAt,
		Source:     w.source,
	})
	if err != nil {
		w.log.Warn("history.append_failed", zap.String("token", string(q.Token)), zap.Error(err))
	}
}
