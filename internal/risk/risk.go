package risk

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/adamstosho/RugRadar/internal/estimate"
	"github.com/adamstosho/RugRadar/internal/models"
)

const (
	MinScore = 0
	MaxScore = 100
)

type BasicScorer struct {
	params   ScoringParameters
	paramsMu sync.RWMutex
}

func NewBasicScorer(initialParams ScoringParameters) *BasicScorer {
	return &BasicScorer{params: initialParams}
}

// Assess applies the scoring rules in order. Every rule adds to or subtracts from
// a running score, discounts never take it below zero and the result is clamped
// into [MinScore, MaxScore].
func (s *BasicScorer) Assess(meta models.TokenMetadata, stats models.TokenStats, holders []models.HolderEstimate) *models.RiskAssessment {
	s.paramsMu.RLock()
	params := s.params
	s.paramsMu.RUnlock()

	assessment := &models.RiskAssessment{
		RiskFactors:     make([]string, 0),
		Recommendations: make([]string, 0),
	}
	score := 0

	apply := func(points int, factor, advice string) {
		score += points
		assessment.RiskFactors = append(assessment.RiskFactors, factor)
		if advice != "" {
			assessment.Recommendations = append(assessment.Recommendations, advice)
		}
	}
	discount := func(points int, factor string) {
		score -= points
		if score < MinScore {
			score = MinScore
		}
		assessment.RiskFactors = append(assessment.RiskFactors, factor)
	}

	// 1. 垃圾币标记
	if meta.PossibleSpam {
		apply(params.SpamPoints, params.SpamLabel, "Do not interact with tokens flagged as spam")
	}

	// 2. 持仓集中度
	if len(holders) > 0 {
		top1, topN := estimate.TopShares(holders, params.TopN)
		if finite(top1) {
			if t, ok := params.TopHolder.above(top1); ok {
				apply(t.Points, fmt.Sprintf(params.TopHolder.Label, percent(top1)), params.TopHolder.Advice)
			}
		}
		if finite(topN) {
			if t, ok := params.TopCumulative.above(topN); ok {
				apply(t.Points, fmt.Sprintf(params.TopCumulative.Label, percent(topN)), params.TopCumulative.Advice)
			}
		}
	}

	// 3. 知名代币折扣
	wellKnown := params.IsWellKnown(meta.Symbol)
	if wellKnown {
		discount(params.WellKnownDiscount, fmt.Sprintf(params.WellKnownLabel, strings.ToUpper(meta.Symbol)))
	}

	// 4. 持有人数
	if !wellKnown && usable(stats.TotalHolders) {
		if t, ok := params.HolderCount.below(stats.TotalHolders.Value); ok {
			apply(t.Points, fmt.Sprintf(params.HolderCount.Label, count(stats.TotalHolders.Value)), params.HolderCount.Advice)
		}
	}

	// 5. 转账活跃度
	if usable(stats.TotalTransfers) {
		v := stats.TotalTransfers.Value
		if !wellKnown {
			if t, ok := params.Transfers.below(v); ok {
				apply(t.Points, fmt.Sprintf(params.Transfers.Label, count(v)), params.Transfers.Advice)
			}
		} else if v > params.HighActivityThreshold {
			discount(params.HighActivityDiscount, fmt.Sprintf(params.HighActivityLabel, count(v)))
		}
	}

	// 6. 流动性，缺失数据只给中性提示分
	if !usable(stats.Liquidity) {
		apply(params.LiquidityUnavailablePoints, params.LiquidityUnavailableLabel,
			"Verify liquidity on a DEX explorer before trading")
	} else if !wellKnown && stats.Liquidity.Value > 0 {
		if t, ok := params.Liquidity.below(stats.Liquidity.Value); ok {
			apply(t.Points, fmt.Sprintf(params.Liquidity.Label, usd(stats.Liquidity.Value)), params.Liquidity.Advice)
		}
	}

	// 7. 24小时成交量
	if usable(stats.Volume24h) && stats.Volume24h.Value > 0 {
		if t, ok := params.Volume.below(stats.Volume24h.Value); ok {
			apply(t.Points, fmt.Sprintf(params.Volume.Label, usd(stats.Volume24h.Value)), params.Volume.Advice)
		}
	}

	// 8. 截断到 [0,100]
	assessment.Score = clamp(score)
	assessment.LooksSafe = assessment.Score < params.SafeBelow
	if !assessment.LooksSafe {
		assessment.Recommendations = append(assessment.Recommendations,
			"High risk overall: avoid, or only trade amounts you can afford to lose")
	}

	return assessment
}

func (s *BasicScorer) SetParameters(params ScoringParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.paramsMu.Lock()
	s.params = params
	s.paramsMu.Unlock()

	return nil
}

// Parameters returns a copy of the active scoring policy.
func (s *BasicScorer) Parameters() ScoringParameters {
	s.paramsMu.RLock()
	defer s.paramsMu.RUnlock()
	return s.params
}

// IsWellKnown reports whether symbol is on the allowlist, ignoring case.
func (p ScoringParameters) IsWellKnown(symbol string) bool {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return false
	}
	for _, s := range p.WellKnown {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	switch {
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func usable(m models.Metric) bool {
	return m.Available() && finite(m.Value)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func count(v float64) string {
	return humanize.Comma(int64(v))
}

func usd(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}
