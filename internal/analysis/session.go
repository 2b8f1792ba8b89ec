package analysis

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adamstosho/RugRadar/internal/models"
)

// Result is delivered once per submitted analysis that was not superseded.
type Result struct {
	Address    string
	Chain      string
	Generation uint64
	Analysis   *models.TokenAnalysis
	Err        error
}

// Session runs one analysis at a time. Submitting a new address cancels the
// one in flight, and a result that arrives after it was superseded is dropped.
type Session struct {
	analyzer Analyzer
	logger   *slog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewSession(analyzer Analyzer, logger *slog.Logger) *Session {
	return &Session{
		analyzer: analyzer,
		logger:   logger,
	}
}

// Submit starts an analysis. The returned channel yields exactly one Result,
// or is closed without a value when the analysis was superseded.
func (s *Session) Submit(ctx context.Context, address, chain string) <-chan Result {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer cancel()

		analysis, err := s.analyzer.Analyze(ctx, address, chain)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			s.logger.Debug("dropping superseded analysis", "address", address, "generation", gen)
			return
		}
		out <- Result{
			Address:    address,
			Chain:      chain,
			Generation: gen,
			Analysis:   analysis,
			Err:        err,
		}
	}()
	return out
}

// Reset cancels whatever is in flight and discards its result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}

// Generation is the number of the most recent submission or reset.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
