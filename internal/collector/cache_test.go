package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PillarReport/internal/model"
)

func newMock() *MockSource {
	return &MockSource{
		Statements: map[model.StatementKind]*model.StatementBundle{
			model.IncomeStatement: {},
			model.BalanceSheet:    {},
			model.CashFlow:        {},
		},
		Overviews: model.Overview{model.FieldMarketCapitalization: "1000000"},
	}
}

func TestCache_FetchesOncePerKind(t *testing.T) {
	src := newMock()
	cache := NewCache(src, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cache.Statement(ctx, "IBM", model.IncomeStatement)
		require.NoError(t, err)
		_, err = cache.Statement(ctx, "IBM", model.BalanceSheet)
		require.NoError(t, err)
		_, err = cache.Overview(ctx, "IBM")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, src.Calls("IBM", model.IncomeStatement))
	assert.Equal(t, 1, src.Calls("IBM", model.BalanceSheet))
	assert.Equal(t, 1, src.Calls("IBM", model.OverviewKind))
	assert.Equal(t, 0, src.Calls("IBM", model.CashFlow))
	assert.Equal(t, 3, cache.Fetches())
}

func TestCache_NormalizesTicker(t *testing.T) {
	src := newMock()
	cache := NewCache(src, zerolog.Nop())
	ctx := context.Background()

	for _, ticker := range []string{"ibm", " IBM ", "IBM", "Ibm"} {
		b, err := cache.Statement(ctx, ticker, model.IncomeStatement)
		require.NoError(t, err)
		assert.Equal(t, "IBM", b.Ticker)
	}
	assert.Equal(t, 1, src.TotalCalls())
}

func TestCache_EmptyTicker(t *testing.T) {
	src := newMock()
	cache := NewCache(src, zerolog.Nop())

	_, err := cache.Statement(context.Background(), "  ", model.IncomeStatement)
	assert.ErrorIs(t, err, model.ErrEmptyTicker)
	_, err = cache.Overview(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrEmptyTicker)
	assert.Zero(t, src.TotalCalls())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("transient")
	src := newMock()
	src.Errs = map[model.StatementKind]error{model.IncomeStatement: boom}
	src.FailOnce = true
	cache := NewCache(src, zerolog.Nop())
	ctx := context.Background()

	_, err := cache.Statement(ctx, "IBM", model.IncomeStatement)
	require.ErrorIs(t, err, boom)

	b, err := cache.Statement(ctx, "IBM", model.IncomeStatement)
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, 2, src.Calls("IBM", model.IncomeStatement))

	_, err = cache.Statement(ctx, "IBM", model.IncomeStatement)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls("IBM", model.IncomeStatement))
}

func TestCache_TickersAreIndependent(t *testing.T) {
	src := newMock()
	cache := NewCache(src, zerolog.Nop())
	ctx := context.Background()

	_, err := cache.Statement(ctx, "IBM", model.IncomeStatement)
	require.NoError(t, err)
	_, err = cache.Statement(ctx, "AAPL", model.IncomeStatement)
	require.NoError(t, err)

	assert.Equal(t, 1, src.Calls("IBM", model.IncomeStatement))
	assert.Equal(t, 1, src.Calls("AAPL", model.IncomeStatement))
}

func TestCache_Prices(t *testing.T) {
	src := newMock()
	cache := NewCache(src, zerolog.Nop())

	p1, err := cache.Prices(context.Background(), "ibm")
	require.NoError(t, err)
	p2, err := cache.Prices(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, src.Calls("IBM", model.DailyPricesKind))
}
