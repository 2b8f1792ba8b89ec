package analysis

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamstosho/RugRadar/internal/data"
	"github.com/adamstosho/RugRadar/internal/data/collector/moralis"
	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/logging"
	"github.com/adamstosho/RugRadar/internal/models"
	"github.com/adamstosho/RugRadar/internal/risk"
)

const (
	usdt    = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	usdtLow = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	alice   = "0x1111111111111111111111111111111111111111"
	bob     = "0x2222222222222222222222222222222222222222"
	carol   = "0x3333333333333333333333333333333333333333"
)

var (
	testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	errDown = errors.New("source down")
)

var _ data.DataCollector = (*fakeCollector)(nil)

type fakeCollector struct {
	meta     *models.TokenMetadata
	metaErr  error
	page     *models.TransferPage
	pageErr  error
	price    *models.TokenPrice
	priceErr error
	quote    *models.TokenPrice
	quoteErr error
	// block makes every call wait for the context to end.
	block bool

	calls      atomic.Int32
	quoteCalls atomic.Int32
}

func (f *fakeCollector) wait(ctx context.Context) error {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeCollector) CollectMetadata(ctx context.Context, token, chain string) (*models.TokenMetadata, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.meta, f.metaErr
}

func (f *fakeCollector) CollectTransfers(ctx context.Context, token, chain string, limit int) (*models.TransferPage, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.page, f.pageErr
}

func (f *fakeCollector) CollectPrice(ctx context.Context, token, chain string) (*models.TokenPrice, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.price, f.priceErr
}

func (f *fakeCollector) CollectQuote(ctx context.Context, symbol string) (*models.TokenPrice, error) {
	f.quoteCalls.Add(1)
	return f.quote, f.quoteErr
}

type fakeNarrator struct {
	summary string
	err     error
}

func (f *fakeNarrator) Summarize(ctx context.Context, a *models.TokenAnalysis) (string, error) {
	return f.summary, f.err
}

func transfer(from, to, value string, age time.Duration) models.TransferRecord {
	return models.TransferRecord{From: from, To: to, Value: value, Timestamp: testNow.Add(-age), TxHash: "0xhash"}
}

// usdtPage mints 600 to alice and 300 to bob, then alice sends 100 to carol.
func usdtPage() *models.TransferPage {
	return &models.TransferPage{
		Limit: 100,
		Transfers: []models.TransferRecord{
			transfer(alice, carol, "100000000", time.Hour),
			transfer(evm.ZeroAddress, bob, "300000000", 2*time.Hour),
			transfer(evm.ZeroAddress, alice, "600000000", 3*time.Hour),
		},
	}
}

func usdtMeta() *models.TokenMetadata {
	return &models.TokenMetadata{Address: usdtLow, Name: "Tether USD", Symbol: "USDT", Decimals: 6}
}

func newTestService(c data.DataCollector, opts Options) *Service {
	opts.Now = func() time.Time { return testNow }
	return NewService(c, risk.NewBasicScorer(risk.DefaultScoringParameters()), logging.Discard(), opts)
}

func TestService_Analyze_Validation(t *testing.T) {
	tests := []struct {
		name    string
		address string
		chain   string
		want    error
	}{
		{name: "too short", address: "0x1234", chain: "eth", want: ErrInvalidAddress},
		{name: "no prefix", address: "dac17f958d2ee523a2206206994597c13d831ec7", chain: "eth", want: ErrInvalidAddress},
		{name: "not hex", address: "0xzac17f958d2ee523a2206206994597c13d831ec7", chain: "eth", want: ErrInvalidAddress},
		{name: "empty", address: "", chain: "eth", want: ErrInvalidAddress},
		{name: "unknown chain", address: usdt, chain: "dogechain", want: ErrUnsupportedChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCollector{meta: usdtMeta()}
			_, err := newTestService(c, Options{}).Analyze(context.Background(), tt.address, tt.chain)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, c.calls.Load(), "no request may be made for invalid input")
		})
	}
}

func TestService_Analyze(t *testing.T) {
	c := &fakeCollector{
		meta:  usdtMeta(),
		page:  usdtPage(),
		price: &models.TokenPrice{USDPrice: 1, PriceChange24h: 0.01, HasChange24h: true, Source: moralis.Name},
	}
	s := newTestService(c, Options{RecentTransfers: 2})

	got, err := s.Analyze(context.Background(), usdt, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultChain, got.Chain)
	assert.Equal(t, usdtLow, got.Metadata.Address)
	assert.Equal(t, testNow, got.AnalyzedAt)
	assert.Empty(t, got.Warnings)
	assert.Len(t, got.Transfers, 2)

	require.Len(t, got.Holders, 3)
	assert.Equal(t, alice, got.Holders[0].Address)
	assert.InDelta(t, 55.56, got.Holders[0].Share, 0.01)

	assert.Equal(t, models.Vendor(3), got.Stats.TotalTransfers)
	assert.Equal(t, models.Estimated(1000), got.Stats.Volume24h)
	assert.Equal(t, models.Vendor(0.01), got.Stats.PriceChange24h)
	assert.False(t, got.Stats.Liquidity.Available())

	// +35 top holder, +20 top five, -40 well known, +10 liquidity unavailable, +5 low volume
	assert.Equal(t, 30, got.Assessment.Score)
	assert.True(t, got.Assessment.LooksSafe)
	assert.Contains(t, got.Assessment.RiskFactors, "USDT is a well-known token, lower risk")
	assert.Contains(t, got.Assessment.RiskFactors, "Low 24h volume: $1,000")
	assert.Zero(t, c.quoteCalls.Load())
}

func TestService_Analyze_MetadataFallback(t *testing.T) {
	decimals := int32(6)
	apiErr := &moralis.APIError{StatusCode: http.StatusUnauthorized, Endpoint: "metadata"}

	tests := []struct {
		name       string
		collector  *fakeCollector
		wantSymbol string
		wantErr    error
	}{
		{
			name: "from price item",
			collector: &fakeCollector{
				metaErr: errDown,
				page:    usdtPage(),
				price:   &models.TokenPrice{USDPrice: 1, TokenSymbol: "USDT", TokenName: "Tether USD", TokenDecimals: &decimals},
			},
			wantSymbol: "USDT",
		},
		{
			name: "from transfer item",
			collector: &fakeCollector{
				metaErr:  errDown,
				priceErr: errDown,
				page: func() *models.TransferPage {
					p := usdtPage()
					p.Token = &models.TokenMetadata{Symbol: "USDT", Decimals: 6}
					return p
				}(),
			},
			wantSymbol: "USDT",
		},
		{
			name:      "nothing left is fatal",
			collector: &fakeCollector{metaErr: apiErr, pageErr: apiErr, priceErr: apiErr},
			wantErr:   ErrMetadataUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestService(tt.collector, Options{}).Analyze(context.Background(), usdt, "eth")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var target *moralis.APIError
				assert.ErrorAs(t, err, &target)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSymbol, got.Metadata.Symbol)
			assert.Equal(t, usdtLow, got.Metadata.Address)
			assert.Equal(t, int32(6), got.Metadata.Decimals)
		})
	}
}

func TestService_Analyze_PartialData(t *testing.T) {
	t.Run("price falls back to a quote by symbol", func(t *testing.T) {
		c := &fakeCollector{
			meta:     usdtMeta(),
			page:     usdtPage(),
			priceErr: errDown,
			quote:    &models.TokenPrice{USDPrice: 2, Source: "binance", Fallback: true, HasChange24h: true, PriceChange24h: 1.5},
		}
		got, err := newTestService(c, Options{}).Analyze(context.Background(), usdt, "eth")
		require.NoError(t, err)

		assert.Equal(t, int32(1), c.quoteCalls.Load())
		require.NotNil(t, got.Price)
		assert.True(t, got.Price.Fallback)
		assert.Equal(t, models.Estimated(2000), got.Stats.Volume24h)
		assert.Equal(t, models.Estimated(1.5), got.Stats.PriceChange24h)
		require.Len(t, got.Warnings, 1)
		assert.Contains(t, got.Warnings[0], "binance")
	})

	t.Run("no price at all", func(t *testing.T) {
		c := &fakeCollector{
			meta:     usdtMeta(),
			page:     usdtPage(),
			priceErr: &moralis.APIError{StatusCode: http.StatusTooManyRequests, Endpoint: "prices"},
			quoteErr: errDown,
		}
		got, err := newTestService(c, Options{}).Analyze(context.Background(), usdt, "eth")
		require.NoError(t, err)

		assert.Nil(t, got.Price)
		assert.False(t, got.Stats.Volume24h.Available())
		assert.Equal(t, []string{"price unavailable: Rate limit exceeded. Please wait a moment and try again."}, got.Warnings)
	})

	t.Run("no transfers", func(t *testing.T) {
		c := &fakeCollector{
			meta:    &models.TokenMetadata{Symbol: "NEWT", Decimals: 18},
			pageErr: errDown,
			price:   &models.TokenPrice{USDPrice: 0.5},
		}
		got, err := newTestService(c, Options{}).Analyze(context.Background(), usdt, "eth")
		require.NoError(t, err)

		assert.Empty(t, got.Holders)
		assert.Empty(t, got.Transfers)
		assert.False(t, got.Stats.TotalTransfers.Available())
		assert.False(t, got.Stats.TotalHolders.Available())
		assert.Equal(t, []string{"transfers unavailable: source down"}, got.Warnings)
		// only the liquidity unavailable factor applies
		assert.Equal(t, 10, got.Assessment.Score)
	})
}

func TestService_Analyze_SpamFlagFromPrice(t *testing.T) {
	c := &fakeCollector{
		meta:  &models.TokenMetadata{Symbol: "FREE", Decimals: 18},
		page:  usdtPage(),
		price: &models.TokenPrice{USDPrice: 1, PossibleSpam: true, TokenLogo: "https://logo"},
	}
	got, err := newTestService(c, Options{}).Analyze(context.Background(), usdt, "eth")
	require.NoError(t, err)

	assert.True(t, got.Metadata.PossibleSpam)
	assert.Equal(t, "https://logo", got.Metadata.Logo)
	assert.Equal(t, risk.DefaultScoringParameters().SpamLabel, got.Assessment.RiskFactors[0])
}

func TestService_Analyze_Timeout(t *testing.T) {
	c := &fakeCollector{block: true}
	s := newTestService(c, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := s.Analyze(context.Background(), usdt, "eth")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "Request timed out. Please try again.", UserMessage(err))
}

func TestService_Analyze_CallerCancel(t *testing.T) {
	c := &fakeCollector{block: true}
	s := newTestService(c, Options{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := s.Analyze(ctx, usdt, "eth")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestService_Analyze_Narrator(t *testing.T) {
	tests := []struct {
		name         string
		narrator     *fakeNarrator
		wantSummary  string
		wantWarnings int
	}{
		{name: "summary added", narrator: &fakeNarrator{summary: "Looks like a blue chip."}, wantSummary: "Looks like a blue chip."},
		{name: "failure is a warning", narrator: &fakeNarrator{err: errDown}, wantWarnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCollector{meta: usdtMeta(), page: usdtPage(), price: &models.TokenPrice{USDPrice: 1}}
			s := newTestService(c, Options{})
			s.SetNarrator(tt.narrator)

			got, err := s.Analyze(context.Background(), usdt, "eth")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSummary, got.Summary)
			assert.Len(t, got.Warnings, tt.wantWarnings)
		})
	}
}
