package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/bootstrap"
	"tokenprices-service/internal/domain"
	"tokenprices-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, cleanup, err := bootstrap.InitWatcher(ctx)
	if err != nil {
		log.Fatal("init watcher", zap.Error(err))
	}
	defer cleanup()

	w.Notify = func(snapshot map[domain.TokenID]application.PriceState) {
		tokens := make([]string, 0, len(snapshot))
		for t := range snapshot {
			tokens = append(tokens, string(t))
		}
		sort.Strings(tokens)
		for _, t := range tokens {
			st := snapshot[domain.TokenID(t)]
			log.Info("price",
				zap.String("token", t),
				zap.String("usd", st.Price.String()),
				zap.String("source", string(st.Source)),
				zap.Bool("stale", st.Stale),
			)
		}
	}
	w.Start(ctx)
}
