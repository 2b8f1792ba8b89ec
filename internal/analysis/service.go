// Package analysis runs one token analysis end to end: validate the input,
// fetch the vendor data concurrently, estimate, score, and optionally narrate.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adamstosho/RugRadar/internal/ai"
	"github.com/adamstosho/RugRadar/internal/data"
	"github.com/adamstosho/RugRadar/internal/data/collector/moralis"
	"github.com/adamstosho/RugRadar/internal/estimate"
	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/models"
	"github.com/adamstosho/RugRadar/internal/risk"
)

const (
	DefaultChain           = "eth"
	DefaultTimeout         = 30 * time.Second
	DefaultRecentTransfers = 20
)

// Analyzer is what front ends depend on.
type Analyzer interface {
	Analyze(ctx context.Context, address, chain string) (*models.TokenAnalysis, error)
}

type Options struct {
	// Timeout bounds a whole analysis, narration included.
	Timeout    time.Duration
	Estimation estimate.Parameters
	// RecentTransfers is how many sampled transfers are kept in the result, 20 when unset.
	RecentTransfers int
	// Now is the clock used for the recency and volume windows.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Estimation == (estimate.Parameters{}) {
		o.Estimation = estimate.DefaultParameters()
	}
	if o.RecentTransfers <= 0 {
		o.RecentTransfers = DefaultRecentTransfers
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service implements Analyzer on top of a DataCollector and an Assessor.
type Service struct {
	collector data.DataCollector
	assessor  risk.Assessor
	narrator  ai.Narrator
	logger    *slog.Logger
	opts      Options
}

func NewService(collector data.DataCollector, assessor risk.Assessor, logger *slog.Logger, opts Options) *Service {
	return &Service{
		collector: collector,
		assessor:  assessor,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

// SetNarrator enables the plain-language summary. A nil narrator disables it.
func (s *Service) SetNarrator(n ai.Narrator) {
	s.narrator = n
}

// Analyze implements Analyzer.
func (s *Service) Analyze(ctx context.Context, address, chain string) (*models.TokenAnalysis, error) {
	addr, ok := evm.Normalize(address)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain == "" {
		chain = DefaultChain
	}
	if !evm.IsChain(chain) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain)
	}

	ctx, cancel := context.WithTimeoutCause(ctx, s.opts.Timeout, ErrTimeout)
	defer cancel()

	p := s.opts.Estimation
	logger := s.logger.With("address", addr, "chain", chain)

	// 1. 并发拉取元数据、转账和价格，各自独立失败
	var (
		meta                       *models.TokenMetadata
		page                       *models.TransferPage
		price                      *models.TokenPrice
		metaErr, pageErr, priceErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		meta, metaErr = s.collector.CollectMetadata(ctx, addr, chain)
		return nil
	})
	g.Go(func() error {
		page, pageErr = s.collector.CollectTransfers(ctx, addr, chain, p.PageSize)
		return nil
	})
	g.Go(func() error {
		price, priceErr = s.collector.CollectPrice(ctx, addr, chain)
		return nil
	})
	_ = g.Wait()

	if err := s.contextErr(ctx); err != nil {
		return nil, err
	}

	var warnings []string
	warn := func(part string, err error) {
		logger.Warn("partial data", "part", part, "error", err)
		warnings = append(warnings, fmt.Sprintf("%s unavailable: %s", part, describe(err)))
	}

	// 2. 元数据回退：metadata 接口 -> 价格条目 -> 转账条目
	if meta == nil {
		switch {
		case price.Metadata(addr) != nil:
			meta = price.Metadata(addr)
		case page != nil && page.Token != nil:
			m := *page.Token
			m.Address = addr
			meta = &m
		default:
			return nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, errors.Join(metaErr, priceErr, pageErr))
		}
		logger.Info("metadata recovered from a secondary endpoint", "error", metaErr)
	}
	tokenMeta := mergeMetadata(*meta, price, addr)

	if pageErr != nil || page == nil {
		warn("transfers", pageErr)
		page = nil
	}

	// 3. 价格回退：按代币符号向备用行情源询价
	if priceErr != nil || price == nil {
		if quote := s.fallbackQuote(ctx, logger, tokenMeta.Symbol); quote != nil {
			price = quote
			warnings = append(warnings, fmt.Sprintf("price taken from %s, matched by symbol", quote.Source))
		} else {
			warn("price", priceErr)
			price = nil
		}
	}

	// 4. 估算与评分
	now := s.opts.Now()
	var transfers []models.TransferRecord
	if page != nil {
		transfers = page.Transfers
	}
	sample := estimate.Holders(transfers, tokenMeta.Decimals, now, p)
	stats := estimate.Stats(estimate.Input{
		Page:     page,
		Holders:  sample,
		Decimals: tokenMeta.Decimals,
		Price:    price,
		Now:      now,
	}, p)
	assessment := s.assessor.Assess(tokenMeta, stats, sample.Top)

	analysis := &models.TokenAnalysis{
		Chain:      chain,
		Metadata:   tokenMeta,
		Stats:      stats,
		Holders:    sample.Top,
		Transfers:  recent(transfers, s.opts.RecentTransfers),
		Price:      price,
		Assessment: *assessment,
		AnalyzedAt: now,
	}

	if s.narrator != nil {
		summary, err := s.narrator.Summarize(ctx, analysis)
		if err != nil {
			warn("summary", err)
		} else {
			analysis.Summary = summary
		}
	}
	analysis.Warnings = warnings

	logger.Info("analysis complete", "symbol", tokenMeta.Symbol, "score", assessment.Score, "warnings", len(warnings))
	return analysis, nil
}

// contextErr reports ErrTimeout for a blown deadline and the plain context
// error when the caller gave up.
func (s *Service) contextErr(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrTimeout) || errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, s.opts.Timeout)
	}
	return cause
}

func (s *Service) fallbackQuote(ctx context.Context, logger *slog.Logger, symbol string) *models.TokenPrice {
	if symbol == "" {
		return nil
	}
	quote, err := s.collector.CollectQuote(ctx, symbol)
	if err != nil {
		logger.Debug("no fallback quote", "symbol", symbol, "error", err)
		return nil
	}
	return quote
}

// mergeMetadata fills gaps in meta from the vendor price item. The spam flag
// is raised if either endpoint raised it.
func mergeMetadata(meta models.TokenMetadata, price *models.TokenPrice, addr string) models.TokenMetadata {
	meta.Address = addr
	if price == nil || price.Fallback {
		return meta
	}
	meta.PossibleSpam = meta.PossibleSpam || price.PossibleSpam
	meta.Verified = meta.Verified || price.Verified
	if meta.Name == "" {
		meta.Name = price.TokenName
	}
	if meta.Symbol == "" {
		meta.Symbol = price.TokenSymbol
	}
	if meta.Logo == "" {
		meta.Logo = price.TokenLogo
	}
	return meta
}

// describe is the short reason shown next to a degraded part of the result.
func describe(err error) string {
	var apiErr *moralis.APIError
	switch {
	case err == nil:
		return "no data"
	case errors.As(err, &apiErr):
		return apiErr.Message()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return "request timed out"
	}
	return err.Error()
}

func recent(transfers []models.TransferRecord, n int) []models.TransferRecord {
	if n > len(transfers) {
		n = len(transfers)
	}
	out := make([]models.TransferRecord, n)
	copy(out, transfers[:n])
	return out
}
