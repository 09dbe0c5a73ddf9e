package priceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"
	"tokenprices-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

var ErrUnsuccessful = errors.New("price api reported failure")

// Client reads the service's own price endpoints.
type Client struct {
	BaseURL string
	HTTP    *httpx.Client
}

var _ application.PriceAPI = (*Client)(nil)

type bulkResponse struct {
	Success bool                       `json:"success"`
	Prices  map[string]decimal.Decimal `json:"prices"`
	Error   string                     `json:"error,omitempty"`
}

type singleResponse struct {
	Success bool            `json:"success"`
	Price   decimal.Decimal `json:"price"`
	Error   string          `json:"error,omitempty"`
}

func New(baseURL string, hc *httpx.Client) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// FetchBulk calls /api/prices for tokens. Unknown keys in the response are ignored.
func (c *Client) FetchBulk(ctx context.Context, tokens []domain.TokenID) (map[domain.TokenID]decimal.Decimal, error) {
	ids := make([]string, len(tokens))
	for i, t := range tokens {
		ids[i] = string(t)
	}
	q := url.Values{}
	q.Set("tokens", strings.Join(ids, ","))

	var body bulkResponse
	if err := c.get(ctx, "/api/prices?"+q.Encode(), &body); err != nil {
		return nil, fmt.Errorf("bulk prices: %w", err)
	}
	if !body.Success || body.Prices == nil {
		return nil, fmt.Errorf("bulk prices: %w: %s", ErrUnsuccessful, body.Error)
	}
	out := make(map[domain.TokenID]decimal.Decimal, len(body.Prices))
	for k, v := range body.Prices {
		if t, ok := domain.ParseTokenID(k); ok {
			out[t] = v
		}
	}
	return out, nil
}

// FetchOne calls the dedicated endpoint for token.
func (c *Client) FetchOne(ctx context.Context, token domain.TokenID) (decimal.Decimal, error) {
	var body singleResponse
	if err := c.get(ctx, "/api/prices/"+token.Slug(), &body); err != nil {
		return decimal.Zero, fmt.Errorf("%s price: %w", token, err)
	}
	if !body.Success {
		return decimal.Zero, fmt.Errorf("%s price: %w: %s", token, ErrUnsuccessful, body.Error)
	}
	return body.Price, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	h := c.HTTP
	if h == nil {
		h = &httpx.Client{}
	}
	return h.DoJSON(ctx, req, out)
}
