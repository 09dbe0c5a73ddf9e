package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
	infraconfig "tokenprices-service/internal/infrastructure/config"
	"tokenprices-service/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	coinGeckoSimplePricePath = "/simple/price"
	maxBodyBytes             = 1 << 20
)

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedPayload    = errors.New("malformed upstream payload")
)

// CoinGecko queries the simple-price endpoint for one token per call, in USD.
type CoinGecko struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	// Timeout bounds the whole call, including any wait on Limiter.
	Timeout time.Duration
	Limiter *rate.Limiter
}

var _ application.PriceFeed = (*CoinGecko)(nil)

type simplePriceEntry struct {
	USD *decimal.Decimal `json:"usd"`
}

func (p *CoinGecko) FetchPrice(ctx context.Context, token domain.TokenID) (decimal.Decimal, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = infraconfig.DefaultUpstreamTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	price, err := p.fetch(ctx, token)
	metrics.RecordUpstreamFetch(string(token), resultLabel(err), time.Since(start))
	return price, err
}

func (p *CoinGecko) fetch(ctx context.Context, token domain.TokenID) (decimal.Decimal, error) {
	if !token.Valid() {
		return decimal.Zero, fmt.Errorf("coingecko: %w: %s", domain.ErrUnsupportedToken, token)
	}
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return decimal.Zero, fmt.Errorf("coingecko: %w: rate limit: %w", ErrUpstreamUnavailable, err)
		}
	}

	u, err := url.Parse(strings.TrimRight(p.BaseURL, "/") + coinGeckoSimplePricePath)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("ids", string(token))
	q.Set("vs_currencies", "usd")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.APIKey)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: %w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, fmt.Errorf("coingecko: %w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body map[string]simplePriceEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: %w: decode: %w", ErrMalformedPayload, err)
	}
	entry, ok := body[string(token)]
	if !ok || entry.USD == nil {
		return decimal.Zero, fmt.Errorf("coingecko: %w: missing usd for %s", ErrMalformedPayload, token)
	}
	if !entry.USD.IsPositive() {
		return decimal.Zero, fmt.Errorf("coingecko: %w: non-positive usd %s for %s", ErrMalformedPayload, entry.USD, token)
	}
	return *entry.USD, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	default:
		return "unavailable"
	}
}
