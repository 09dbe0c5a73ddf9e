//go:build wireinject

package bootstrap

import (
	"context"

	httpserver "tokenprices-service/internal/infrastructure/http"
	"tokenprices-service/internal/infrastructure/worker"

	"github.com/google/wire"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
)

var apiSet = wire.NewSet(
	baseSet,
	ProvidePriceFeed,
	ProvideRedisClient,
	ProvideMirror,
	ProvideHistory,
	ProvidePriceCache,
	ProvideBulkLookup,
	ProvideServer,
)

var watcherSet = wire.NewSet(
	baseSet,
	ProvidePriceAPI,
	ProvidePriceBook,
	ProvideWatcher,
)

// InitAPI builds the HTTP server and the cleanup for its backends.
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	wire.Build(apiSet)
	return nil, nil, nil
}

// InitWatcher builds the client-side price watcher.
func InitWatcher(ctx context.Context) (*worker.PriceWatcher, func(), error) {
	wire.Build(watcherSet)
	return nil, nil, nil
}
