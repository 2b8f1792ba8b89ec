package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adamstosho/RugRadar/internal/models"
)

// Assessor scores a token from its metadata, aggregate stats and ranked holders.
type Assessor interface {
	// Assess is pure: identical inputs give identical results and nothing is mutated.
	Assess(meta models.TokenMetadata, stats models.TokenStats, holders []models.HolderEstimate) *models.RiskAssessment

	// SetParameters swaps the scoring policy.
	SetParameters(params ScoringParameters) error
}

// Tier 单档阈值
type Tier struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Points    int     `json:"points" yaml:"points"`
}

// TierSet is a group of mutually exclusive tiers, only the first match applies.
// Label is a format string with a single %s verb that receives the observed value.
type TierSet struct {
	Label  string `json:"label" yaml:"label"`
	Advice string `json:"advice,omitempty" yaml:"advice,omitempty"`
	Tiers  []Tier `json:"tiers" yaml:"tiers"`
}

// above returns the first tier whose threshold v exceeds. Tiers are ordered high to low.
func (s TierSet) above(v float64) (Tier, bool) {
	for _, t := range s.Tiers {
		if v > t.Threshold {
			return t, true
		}
	}
	return Tier{}, false
}

// below returns the first tier whose threshold v is under. Tiers are ordered low to high.
func (s TierSet) below(v float64) (Tier, bool) {
	for _, t := range s.Tiers {
		if v < t.Threshold {
			return t, true
		}
	}
	return Tier{}, false
}

func (s TierSet) validate(name string, descending bool) error {
	if strings.Count(s.Label, "%s") != 1 {
		return fmt.Errorf("%s: label must contain exactly one %%s verb", name)
	}
	for i, t := range s.Tiers {
		if t.Points < 0 {
			return fmt.Errorf("%s: tier %d has negative points", name, i)
		}
		if i == 0 {
			continue
		}
		prev := s.Tiers[i-1].Threshold
		if descending && t.Threshold >= prev || !descending && t.Threshold <= prev {
			return fmt.Errorf("%s: tier thresholds out of order at %d", name, i)
		}
	}
	return nil
}

// ScoringParameters 评分参数配置
type ScoringParameters struct {
	SpamPoints int    `json:"spam_points" yaml:"spam_points"`
	SpamLabel  string `json:"spam_label" yaml:"spam_label"`

	// TopHolder and TopCumulative are matched with ">" and must be ordered high to low.
	TopHolder     TierSet `json:"top_holder" yaml:"top_holder"`
	TopCumulative TierSet `json:"top_cumulative" yaml:"top_cumulative"`
	TopN          int     `json:"top_n" yaml:"top_n"`

	WellKnown         []string `json:"well_known" yaml:"well_known"`
	WellKnownDiscount int      `json:"well_known_discount" yaml:"well_known_discount"`
	WellKnownLabel    string   `json:"well_known_label" yaml:"well_known_label"`

	// The remaining tier sets are matched with "<" and must be ordered low to high.
	HolderCount TierSet `json:"holder_count" yaml:"holder_count"`
	Transfers   TierSet `json:"transfers" yaml:"transfers"`

	HighActivityThreshold float64 `json:"high_activity_threshold" yaml:"high_activity_threshold"`
	HighActivityDiscount  int     `json:"high_activity_discount" yaml:"high_activity_discount"`
	HighActivityLabel     string  `json:"high_activity_label" yaml:"high_activity_label"`

	Liquidity                  TierSet `json:"liquidity" yaml:"liquidity"`
	LiquidityUnavailablePoints int     `json:"liquidity_unavailable_points" yaml:"liquidity_unavailable_points"`
	LiquidityUnavailableLabel  string  `json:"liquidity_unavailable_label" yaml:"liquidity_unavailable_label"`

	Volume TierSet `json:"volume" yaml:"volume"`

	// SafeBelow is the score under which a token is presented as looking safe.
	SafeBelow int `json:"safe_below" yaml:"safe_below"`
}

func DefaultScoringParameters() ScoringParameters {
	return ScoringParameters{
		SpamPoints: 30,
		SpamLabel:  "Flagged as possible spam by the data provider",

		TopHolder: TierSet{
			Label:  "Top holder controls %s of the sampled supply",
			Advice: "Check whether the top holder is a known exchange, bridge or locked contract",
			Tiers:  []Tier{{50, 35}, {20, 25}, {10, 15}},
		},
		TopCumulative: TierSet{
			Label:  "Top 5 holders control %s of the sampled supply",
			Advice: "Concentrated ownership allows a few wallets to move the price",
			Tiers:  []Tier{{80, 20}, {60, 10}},
		},
		TopN: 5,

		WellKnown:         []string{"USDT", "USDC", "DAI", "WETH", "WBTC", "AAVE"},
		WellKnownDiscount: 40,
		WellKnownLabel:    "%s is a well-known token, lower risk",

		HolderCount: TierSet{
			Label:  "Only about %s holders",
			Advice: "A small holder base makes the token easy to manipulate",
			Tiers:  []Tier{{50, 25}, {200, 15}, {1000, 8}},
		},
		Transfers: TierSet{
			Label:  "Low transfer activity: about %s transfers",
			Advice: "Wait for more trading history before committing funds",
			Tiers:  []Tier{{20, 25}, {100, 15}, {500, 8}},
		},

		HighActivityThreshold: 100_000,
		HighActivityDiscount:  10,
		HighActivityLabel:     "Very high transfer activity: about %s transfers",

		Liquidity: TierSet{
			Label:  "Low liquidity: %s",
			Advice: "Low liquidity means large sells move the price sharply",
			Tiers:  []Tier{{5_000, 25}, {50_000, 15}, {200_000, 8}},
		},
		LiquidityUnavailablePoints: 10,
		LiquidityUnavailableLabel:  "Liquidity data unavailable, proceed with caution",

		Volume: TierSet{
			Label:  "Low 24h volume: %s",
			Advice: "Thin daily volume can make it hard to exit a position",
			Tiers:  []Tier{{1_000, 10}, {10_000, 5}},
		},

		SafeBelow: 50,
	}
}

// Validate checks that every tier set is well formed and the discounts are sane.
func (p ScoringParameters) Validate() error {
	var errs []error

	if p.SpamPoints < 0 {
		errs = append(errs, errors.New("spam_points must not be negative"))
	}
	if p.TopN <= 0 {
		errs = append(errs, errors.New("top_n must be positive"))
	}
	if p.WellKnownDiscount < 0 || p.HighActivityDiscount < 0 {
		errs = append(errs, errors.New("discounts must not be negative"))
	}
	if p.LiquidityUnavailablePoints < 0 {
		errs = append(errs, errors.New("liquidity_unavailable_points must not be negative"))
	}
	if p.HighActivityThreshold <= 0 {
		errs = append(errs, errors.New("high_activity_threshold must be positive"))
	}
	if p.SafeBelow <= 0 || p.SafeBelow > MaxScore {
		errs = append(errs, fmt.Errorf("safe_below must be within 1..%d", MaxScore))
	}
	for _, label := range []struct{ name, value string }{
		{"well_known_label", p.WellKnownLabel},
		{"high_activity_label", p.HighActivityLabel},
	} {
		if strings.Count(label.value, "%s") != 1 {
			errs = append(errs, fmt.Errorf("%s must contain exactly one %%s verb", label.name))
		}
	}
	if p.SpamLabel == "" || p.LiquidityUnavailableLabel == "" {
		errs = append(errs, errors.New("spam_label and liquidity_unavailable_label are required"))
	}

	for _, set := range []struct {
		name       string
		set        TierSet
		descending bool
	}{
		{"top_holder", p.TopHolder, true},
		{"top_cumulative", p.TopCumulative, true},
		{"holder_count", p.HolderCount, false},
		{"transfers", p.Transfers, false},
		{"liquidity", p.Liquidity, false},
		{"volume", p.Volume, false},
	} {
		if err := set.set.validate(set.name, set.descending); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid risk parameters: %w", errors.Join(errs...))
	}
	return nil
}
