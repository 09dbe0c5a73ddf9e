package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
	"tokenprices-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	msgMissingTokens = "Missing tokens parameter. Use ?tokens=ethereum,celo,gooddollar"
	msgInternal      = "Internal server error"
	msgFetchFailed   = "Failed to fetch price"
)

type Server struct {
	prices application.PriceLookup
	bulk   *application.BulkLookup
	ping   func(ctx context.Context) error
	now    func() time.Time
}

func NewServer(prices application.PriceLookup, bulk *application.BulkLookup) *Server {
	return &Server{prices: prices, bulk: bulk, now: time.Now}
}

// SetReadyCheck installs the dependency probe used by /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type bulkResponse struct {
	Success   bool               `json:"success"`
	Prices    map[string]float64 `json:"prices,omitempty"`
	CacheInfo map[string]int64   `json:"cache_info,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp string             `json:"timestamp,omitempty"`
}

type tokenResponse struct {
	Success         bool    `json:"success"`
	Price           float64 `json:"price"`
	Cached          *bool   `json:"cached,omitempty"`
	CacheAgeSeconds *int64  `json:"cache_age_seconds,omitempty"`
	Error           string  `json:"error,omitempty"`
	Timestamp       string  `json:"timestamp"`
}

type errorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetPrices serves GET /api/prices?tokens=a,b.
func (s *Server) GetPrices(w http.ResponseWriter, r *http.Request) {
	var requested []string
	if raw := r.URL.Query().Get("tokens"); strings.TrimSpace(raw) != "" {
		requested = strings.Split(raw, ",")
	}

	res, err := s.bulk.GetPrices(r.Context(), requested)
	switch {
	case errors.Is(err, application.ErrMissingTokens):
		writeJSON(w, http.StatusBadRequest, bulkResponse{Error: msgMissingTokens})
		return
	case errors.Is(err, application.ErrNoValidTokens):
		writeJSON(w, http.StatusBadRequest, bulkResponse{
			Error: "No valid tokens provided. Supported tokens: " + domain.SupportedList(),
		})
		return
	case err != nil:
		logx.WithFields(r.Context()).Error("prices.bulk_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, bulkResponse{
			Error:     msgInternal,
			Prices:    priceMap(s.bulk.Defaults()),
			Timestamp: s.timestamp(),
		})
		return
	}

	info := make(map[string]int64, len(res.Tokens))
	for _, t := range res.Tokens {
		info[string(t)+"_cache_age"] = res.CacheAgeSeconds[t]
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int64(s.bulk.FreshnessWindow()/time.Second)))
	writeJSON(w, http.StatusOK, bulkResponse{
		Success:   true,
		Prices:    priceMap(res.Prices),
		CacheInfo: info,
		Timestamp: s.timestamp(),
	})
}

// HeadPrices answers liveness probes on the bulk route without touching the cache.
func (s *Server) HeadPrices(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetTokenPrice serves GET /api/prices/{eth|celo|gooddollar}.
func (s *Server) GetTokenPrice(w http.ResponseWriter, r *http.Request) {
	token, ok := domain.TokenBySlug(chi.URLParam(r, "slug"))
	if !ok {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}

	res, err := s.lookup(r.Context(), token)
	if err != nil {
		logx.WithFields(r.Context()).Error("prices.token_failed", zap.String("token", string(token)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, tokenResponse{
			Price:     s.bulk.Defaults().Price(token).InexactFloat64(),
			Error:     msgFetchFailed,
			Timestamp: s.timestamp(),
		})
		return
	}

	resp := tokenResponse{
		Success:   true,
		Price:     res.Price.InexactFloat64(),
		Cached:    &res.Cached,
		Timestamp: s.timestamp(),
	}
	if res.Cached {
		age := res.AgeSeconds()
		resp.CacheAgeSeconds = &age
	}
	writeJSON(w, http.StatusOK, resp)
}

// lookup turns a panic or a non-positive price into an error.
func (s *Server) lookup(ctx context.Context, token domain.TokenID) (res domain.Lookup, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", application.ErrOrchestration, rec)
		}
	}()
	res = s.prices.Get(ctx, token)
	if !res.Price.IsPositive() {
		return res, fmt.Errorf("%w: non-positive price for %s", application.ErrOrchestration, token)
	}
	return res, nil
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func priceMap(in map[domain.TokenID]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[string(k)] = v.InexactFloat64()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Code: status, Message: msg})
}
