package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamstosho/RugRadar/internal/models"
)

var ErrNoSources = errors.New("no data sources configured")

// MultiSourceCollector implements DataCollector by trying its sources in order
type MultiSourceCollector struct {
	sources []DataSource
	quotes  []QuoteSource
	logger  Logger
}

type Logger interface {
	Error(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
}

// DataSource is a vendor that can be asked about a contract address.
type DataSource interface {
	Name() string
	FetchMetadata(ctx context.Context, token, chain string) (*models.TokenMetadata, error)
	FetchTransfers(ctx context.Context, token, chain string, limit int) (*models.TransferPage, error)
	FetchPrice(ctx context.Context, token, chain string) (*models.TokenPrice, error)
}

// QuoteSource only knows tickers, it is matched by symbol.
type QuoteSource interface {
	Name() string
	CollectQuote(ctx context.Context, symbol string) (*models.TokenPrice, error)
}

func NewMultiSourceCollector(sources []DataSource, quotes []QuoteSource, logger Logger) *MultiSourceCollector {
	return &MultiSourceCollector{
		sources: sources,
		quotes:  quotes,
		logger:  logger,
	}
}

// first runs fetch against every source until one succeeds. The returned
// error wraps every failure so callers can still inspect vendor errors.
func first[T any](ctx context.Context, c *MultiSourceCollector, what string, fetch func(DataSource) (*T, error)) (*T, error) {
	if len(c.sources) == 0 {
		return nil, ErrNoSources
	}

	var errs []error
	for _, source := range c.sources {
		result, err := fetch(source)
		if err == nil && result != nil {
			c.logger.Info("collected "+what, "source", source.Name())
			return result, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned no %s", source.Name(), what)
		}
		c.logger.Error("failed to collect "+what, "source", source.Name(), "error", err)
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("failed to collect %s from all sources: %w", what, errors.Join(errs...))
}

// CollectMetadata implements DataCollector interface
func (c *MultiSourceCollector) CollectMetadata(ctx context.Context, token, chain string) (*models.TokenMetadata, error) {
	return first(ctx, c, "metadata", func(s DataSource) (*models.TokenMetadata, error) {
		return s.FetchMetadata(ctx, token, chain)
	})
}

// CollectTransfers implements DataCollector interface
func (c *MultiSourceCollector) CollectTransfers(ctx context.Context, token, chain string, limit int) (*models.TransferPage, error) {
	return first(ctx, c, "transfers", func(s DataSource) (*models.TransferPage, error) {
		return s.FetchTransfers(ctx, token, chain, limit)
	})
}

// CollectPrice implements DataCollector interface
func (c *MultiSourceCollector) CollectPrice(ctx context.Context, token, chain string) (*models.TokenPrice, error) {
	return first(ctx, c, "price", func(s DataSource) (*models.TokenPrice, error) {
		return s.FetchPrice(ctx, token, chain)
	})
}

// CollectQuote implements DataCollector interface
func (c *MultiSourceCollector) CollectQuote(ctx context.Context, symbol string) (*models.TokenPrice, error) {
	if len(c.quotes) == 0 {
		return nil, ErrNoSources
	}

	var errs []error
	for _, source := range c.quotes {
		quote, err := source.CollectQuote(ctx, symbol)
		if err == nil && quote != nil {
			c.logger.Info("collected quote", "source", source.Name(), "symbol", symbol)
			return quote, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned no quote", source.Name())
		}
		c.logger.Warn("failed to collect quote", "source", source.Name(), "symbol", symbol, "error", err)
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("failed to collect quote from all sources: %w", errors.Join(errs...))
}
