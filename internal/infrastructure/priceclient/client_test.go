package priceclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenprices-service/internal/domain"
	"tokenprices-service/internal/infrastructure/httpx"
	"tokenprices-service/internal/infrastructure/priceclient"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *priceclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return priceclient.New(srv.URL+"/", &httpx.Client{HTTP: srv.Client()})
}

func TestFetchBulk(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/prices", r.URL.Path)
		require.Equal(t, "ethereum,celo", r.URL.Query().Get("tokens"))
		_, _ = w.Write([]byte(`{"success":true,"prices":{"ethereum":4500,"celo":0.3,"doge":1},"cache_info":{}}`))
	})
	prices, err := c.FetchBulk(context.Background(), []domain.TokenID{domain.Ethereum, domain.Celo})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	require.Equal(t, "4500", prices[domain.Ethereum].String())
	require.Equal(t, "0.3", prices[domain.Celo].String())
}

func TestFetchBulk_Unsuccessful(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"nope"}`))
	})
	_, err := c.FetchBulk(context.Background(), []domain.TokenID{domain.Celo})
	require.ErrorIs(t, err, priceclient.ErrUnsuccessful)
}

func TestFetchBulk_ServerError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"prices":{"celo":0.3}}`))
	})
	_, err := c.FetchBulk(context.Background(), []domain.TokenID{domain.Celo})
	require.Error(t, err)
}

func TestFetchOne(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/prices/eth", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"price":4321.5,"cached":true,"cache_age_seconds":12}`))
	})
	p, err := c.FetchOne(context.Background(), domain.Ethereum)
	require.NoError(t, err)
	require.Equal(t, "4321.5", p.String())
}
