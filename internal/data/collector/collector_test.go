package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamstosho/RugRadar/internal/data"
	"github.com/adamstosho/RugRadar/internal/models"
)

var _ data.DataCollector = (*MultiSourceCollector)(nil)

var errDown = errors.New("source down")

type fakeSource struct {
	name  string
	meta  *models.TokenMetadata
	page  *models.TransferPage
	price *models.TokenPrice
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchMetadata(ctx context.Context, token, chain string) (*models.TokenMetadata, error) {
	f.calls++
	return f.meta, f.err
}

func (f *fakeSource) FetchTransfers(ctx context.Context, token, chain string, limit int) (*models.TransferPage, error) {
	f.calls++
	return f.page, f.err
}

func (f *fakeSource) FetchPrice(ctx context.Context, token, chain string) (*models.TokenPrice, error) {
	f.calls++
	return f.price, f.err
}

type fakeQuotes struct {
	name  string
	quote *models.TokenPrice
	err   error
}

func (f *fakeQuotes) Name() string { return f.name }

func (f *fakeQuotes) CollectQuote(ctx context.Context, symbol string) (*models.TokenPrice, error) {
	return f.quote, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiSourceCollector_CollectMetadata(t *testing.T) {
	tests := []struct {
		name       string
		sources    []*fakeSource
		wantSymbol string
		wantErr    bool
		wantCalls  []int
	}{
		{
			name: "first source wins",
			sources: []*fakeSource{
				{name: "a", meta: &models.TokenMetadata{Symbol: "AAA"}},
				{name: "b", meta: &models.TokenMetadata{Symbol: "BBB"}},
			},
			wantSymbol: "AAA",
			wantCalls:  []int{1, 0},
		},
		{
			name: "falls through a failing source",
			sources: []*fakeSource{
				{name: "a", err: errDown},
				{name: "b", meta: &models.TokenMetadata{Symbol: "BBB"}},
			},
			wantSymbol: "BBB",
			wantCalls:  []int{1, 1},
		},
		{
			name: "nil result counts as failure",
			sources: []*fakeSource{
				{name: "a"},
				{name: "b", meta: &models.TokenMetadata{Symbol: "BBB"}},
			},
			wantSymbol: "BBB",
			wantCalls:  []int{1, 1},
		},
		{
			name: "all sources fail",
			sources: []*fakeSource{
				{name: "a", err: errDown},
				{name: "b", err: errDown},
			},
			wantErr:   true,
			wantCalls: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := make([]DataSource, 0, len(tt.sources))
			for _, s := range tt.sources {
				sources = append(sources, s)
			}
			c := NewMultiSourceCollector(sources, nil, testLogger())

			meta, err := c.CollectMetadata(context.Background(), "0x1", "eth")
			if tt.wantErr {
				assert.ErrorIs(t, err, errDown)
				assert.Nil(t, meta)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSymbol, meta.Symbol)
			}

			for i, s := range tt.sources {
				assert.Equal(t, tt.wantCalls[i], s.calls, "calls to %s", s.name)
			}
		})
	}
}

func TestMultiSourceCollector_TransfersAndPrice(t *testing.T) {
	page := &models.TransferPage{Limit: 100}
	price := &models.TokenPrice{USDPrice: 1}
	c := NewMultiSourceCollector([]DataSource{&fakeSource{name: "a", page: page, price: price}}, nil, testLogger())

	gotPage, err := c.CollectTransfers(context.Background(), "0x1", "eth", 100)
	require.NoError(t, err)
	assert.Same(t, page, gotPage)

	gotPrice, err := c.CollectPrice(context.Background(), "0x1", "eth")
	require.NoError(t, err)
	assert.Same(t, price, gotPrice)
}

func TestMultiSourceCollector_NoSources(t *testing.T) {
	c := NewMultiSourceCollector(nil, nil, testLogger())

	_, err := c.CollectMetadata(context.Background(), "0x1", "eth")
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = c.CollectQuote(context.Background(), "AAVE")
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestMultiSourceCollector_StopsOnCanceledContext(t *testing.T) {
	a := &fakeSource{name: "a", err: context.Canceled}
	b := &fakeSource{name: "b", meta: &models.TokenMetadata{Symbol: "BBB"}}
	c := NewMultiSourceCollector([]DataSource{a, b}, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CollectMetadata(ctx, "0x1", "eth")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.calls)
}

func TestMultiSourceCollector_CollectQuote(t *testing.T) {
	quote := &models.TokenPrice{USDPrice: 92.5, Fallback: true}
	c := NewMultiSourceCollector(nil, []QuoteSource{
		&fakeQuotes{name: "down", err: errDown},
		&fakeQuotes{name: "up", quote: quote},
	}, testLogger())

	got, err := c.CollectQuote(context.Background(), "AAVE")
	require.NoError(t, err)
	assert.Same(t, quote, got)

	c = NewMultiSourceCollector(nil, []QuoteSource{&fakeQuotes{name: "down", err: errDown}}, testLogger())
	_, err = c.CollectQuote(context.Background(), "AAVE")
	assert.ErrorIs(t, err, errDown)
}
