package application

import (
	"testing"
	"time"

	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPriceBook_StartsWithDefaults(t *testing.T) {
	t.Parallel()
	b := NewPriceBook(nil)
	for _, tok := range domain.SupportedTokens() {
		s := b.State(tok)
		require.Equal(t, SourceDefault, s.Source)
		require.True(t, s.Price.Equal(domain.DefaultPrices().Price(tok)))
	}
	require.Equal(t, domain.DefaultPrices(), b.Prices())
}

func TestPriceBook_Transitions(t *testing.T) {
	t.Parallel()
	b := NewPriceBook(domain.DefaultPrices())
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	missing := b.ApplyBulk(map[domain.TokenID]decimal.Decimal{
		domain.Ethereum: dec("4500"),
		domain.Celo:     decimal.Zero,
	}, at)
	require.Equal(t, []domain.TokenID{domain.Celo, domain.GoodDollar}, missing)
	require.Equal(t, SourceBulk, b.State(domain.Ethereum).Source)
	require.Equal(t, SourceDefault, b.State(domain.Celo).Source)

	require.True(t, b.ApplyIndividual(domain.Celo, dec("0.31"), at))
	require.False(t, b.ApplyIndividual(domain.Celo, dec("-1"), at))
	require.Equal(t, SourceIndividual, b.State(domain.Celo).Source)
	require.True(t, b.Price(domain.Celo).Equal(dec("0.31")))

	b.MarkStale(domain.Ethereum)
	s := b.State(domain.Ethereum)
	require.True(t, s.Stale)
	require.True(t, s.Price.Equal(dec("4500")))

	b.ApplyBulk(map[domain.TokenID]decimal.Decimal{domain.Ethereum: dec("4600")}, at.Add(time.Minute))
	s = b.State(domain.Ethereum)
	require.False(t, s.Stale)
	require.Equal(t, at.Add(time.Minute), s.UpdatedAt)
	require.Len(t, b.Snapshot(), 3)
}
