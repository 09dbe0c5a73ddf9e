package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
	httpserver "tokenprices-service/internal/infrastructure/http"
	"tokenprices-service/internal/infrastructure/httpx"
	"tokenprices-service/internal/infrastructure/priceclient"
	"tokenprices-service/internal/infrastructure/provider"
	"tokenprices-service/internal/infrastructure/worker"

	"github.com/stretchr/testify/require"
)

// upstream mimics the CoinGecko simple price endpoint.
type upstream struct {
	mu     sync.Mutex
	prices map[string]string
	calls  atomic.Int64
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	id := r.URL.Query().Get("ids")
	u.mu.Lock()
	p, ok := u.prices[id]
	u.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{%q:{"usd":%s}}`, id, p)
}

func startService(t *testing.T, up *upstream) *httptest.Server {
	t.Helper()
	cg := httptest.NewServer(up)
	t.Cleanup(cg.Close)

	feed := &provider.CoinGecko{BaseURL: cg.URL, Client: cg.Client()}
	cache := application.NewPriceCache(feed)
	srv := httpserver.NewServer(cache, application.NewBulkLookupFromCache(cache))

	api := httptest.NewServer(httpserver.NewRouter(srv))
	t.Cleanup(api.Close)
	return api
}

func newWatcher(api *httptest.Server) (*worker.PriceWatcher, *application.PriceBook) {
	book := application.NewPriceBook(nil)
	return &worker.PriceWatcher{
		Client: priceclient.New(api.URL, &httpx.Client{HTTP: api.Client()}),
		Book:   book,
	}, book
}

func TestPipeline_WatcherReadsLivePrices(t *testing.T) {
	up := &upstream{prices: map[string]string{
		"ethereum":   "4123.45",
		"celo":       "0.42",
		"gooddollar": "0.0001",
	}}
	api := startService(t, up)
	w, book := newWatcher(api)

	w.Poll(context.Background())

	for _, tok := range domain.SupportedTokens() {
		st := book.State(tok)
		require.Equal(t, application.SourceBulk, st.Source, tok)
		require.False(t, st.Stale)
	}
	require.Equal(t, "4123.45", book.Price(domain.Ethereum).String())
	require.EqualValues(t, 3, up.calls.Load())

	// second cycle is served from the service cache
	w.Poll(context.Background())
	require.EqualValues(t, 3, up.calls.Load())
}

func TestPipeline_UpstreamDownYieldsDefaults(t *testing.T) {
	up := &upstream{prices: map[string]string{"ethereum": "3999"}}
	api := startService(t, up)
	w, book := newWatcher(api)

	w.Poll(context.Background())

	require.Equal(t, "3999", book.Price(domain.Ethereum).String())
	require.True(t, book.Price(domain.Celo).Equal(domain.DefaultPrices()[domain.Celo]))
	require.True(t, book.Price(domain.GoodDollar).Equal(domain.DefaultPrices()[domain.GoodDollar]))
	// the service answered with fallbacks, so the bulk call itself succeeded
	require.Equal(t, application.SourceBulk, book.State(domain.Celo).Source)
}

func TestPipeline_PerTokenEndpoint(t *testing.T) {
	up := &upstream{prices: map[string]string{"celo": "0.5"}}
	api := startService(t, up)

	c := priceclient.New(api.URL, &httpx.Client{HTTP: api.Client()})
	p, err := c.FetchOne(context.Background(), domain.Celo)
	require.NoError(t, err)
	require.Equal(t, "0.5", p.String())

	// a second read is cached and does not reach the upstream
	_, err = c.FetchOne(context.Background(), domain.Celo)
	require.NoError(t, err)
	require.EqualValues(t, 1, up.calls.Load())
}
