package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/adamstosho/RugRadar/internal/models"
)

const (
	Name              = "binance"
	DefaultQuoteAsset = "USDT"
)

// wrapped tokens trade on the exchange under their native asset
var aliases = map[string]string{
	"WETH":   "ETH",
	"WBTC":   "BTC",
	"WBNB":   "BNB",
	"WMATIC": "POL",
	"MATIC":  "POL",
}

var ErrUnquotable = errors.New("symbol cannot be quoted")

// BinanceQuoteSource quotes tokens by symbol from the public 24h ticker.
// A symbol match says nothing about the contract, so every quote is marked Fallback.
type BinanceQuoteSource struct {
	client     *binance.Client
	quoteAsset string
}

func NewBinanceQuoteSource(baseURL, quoteAsset string) *BinanceQuoteSource {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if quoteAsset == "" {
		quoteAsset = DefaultQuoteAsset
	}

	return &BinanceQuoteSource{
		client:     client,
		quoteAsset: strings.ToUpper(quoteAsset),
	}
}

func (b *BinanceQuoteSource) Name() string {
	return Name
}

// Pair returns the exchange pair used for symbol.
func (b *BinanceQuoteSource) Pair(symbol string) (string, error) {
	base := strings.ToUpper(strings.TrimSpace(symbol))
	if alias, ok := aliases[base]; ok {
		base = alias
	}
	if base == "" || base == b.quoteAsset {
		return "", fmt.Errorf("%w: %q against %s", ErrUnquotable, symbol, b.quoteAsset)
	}
	for _, r := range base {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("%w: %q", ErrUnquotable, symbol)
		}
	}
	return base + b.quoteAsset, nil
}

func (b *BinanceQuoteSource) CollectQuote(ctx context.Context, symbol string) (*models.TokenPrice, error) {
	pair, err := b.Pair(symbol)
	if err != nil {
		return nil, err
	}

	stats, err := b.client.NewListPriceChangeStatsService().Symbol(pair).Do(ctx)
	if err != nil {
		if common.IsAPIError(err) {
			return nil, fmt.Errorf("ticker %s: %w", pair, err)
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if len(stats) == 0 || stats[0] == nil {
		return nil, fmt.Errorf("ticker %s: empty response", pair)
	}
	ticker := stats[0]

	price, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}

	priceChange, err := strconv.ParseFloat(ticker.PriceChangePercent, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price change: %w", err)
	}

	return &models.TokenPrice{
		USDPrice:       price,
		PriceChange24h: priceChange,
		HasChange24h:   true,
		ExchangeName:   "Binance " + pair,
		Source:         Name,
		Fallback:       true,
		TokenSymbol:    strings.ToUpper(symbol),
	}, nil
}
