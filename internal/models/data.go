package models

import "time"

// TokenMetadata 代币元数据
type TokenMetadata struct {
	Address      string `json:"address" yaml:"address"`
	Name         string `json:"name" yaml:"name"`
	Symbol       string `json:"symbol" yaml:"symbol"`
	Decimals     int32  `json:"decimals" yaml:"decimals"`
	PossibleSpam bool   `json:"possible_spam" yaml:"possible_spam"`
	Logo         string `json:"logo,omitempty" yaml:"logo,omitempty"`
	Verified     bool   `json:"verified_contract" yaml:"verified_contract"`
}

// TransferRecord 单笔转账记录，Value 为链上原始整数（字符串保存精度）
type TransferRecord struct {
	From        string    `json:"from_address" yaml:"from_address"`
	To          string    `json:"to_address" yaml:"to_address"`
	Value       string    `json:"value" yaml:"value"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	TxHash      string    `json:"transaction_hash" yaml:"transaction_hash"`
	BlockNumber string    `json:"block_number,omitempty" yaml:"block_number,omitempty"`
}

// TransferPage is one bounded page of the vendor transfer log, most recent first.
type TransferPage struct {
	Transfers []TransferRecord `json:"transfers"`
	// Limit is the page size that was requested.
	Limit int `json:"limit"`
	// Total is the vendor supplied total, nil when the vendor omitted it.
	Total *int64 `json:"total,omitempty"`
	// Token holds token fields embedded in the transfer items, if any.
	Token *TokenMetadata `json:"token,omitempty"`
}

// Full reports whether the page was filled up to the requested limit.
func (p *TransferPage) Full() bool {
	return p != nil && p.Limit > 0 && len(p.Transfers) >= p.Limit
}

// HolderEstimate 根据转账样本推算的持有者
type HolderEstimate struct {
	Address string `json:"owner_address" yaml:"owner_address"`
	// Balance in token units.
	Balance string `json:"balance" yaml:"balance"`
	// Share is the percentage of the summed balances of the returned top holders, not of total supply.
	Share        float64   `json:"share" yaml:"share"`
	LastActivity time.Time `json:"last_activity" yaml:"last_activity"`
}

// HolderSample is the result of replaying a transfer sample.
type HolderSample struct {
	Top       []HolderEstimate `json:"top"`
	Addresses int              `json:"addresses"`
	Positive  int              `json:"positive"`
	Eligible  int              `json:"eligible"`
}

// Source tells where a figure came from.
type Source string

const (
	SourceVendor      Source = "vendor"
	SourceEstimated   Source = "estimated"
	SourceUnavailable Source = "unavailable"
)

// Metric is a single aggregate figure tagged with its provenance.
type Metric struct {
	Value  float64 `json:"value" yaml:"value"`
	Source Source  `json:"source" yaml:"source"`
}

func Vendor(v float64) Metric    { return Metric{Value: v, Source: SourceVendor} }
func Estimated(v float64) Metric { return Metric{Value: v, Source: SourceEstimated} }
func Unavailable() Metric        { return Metric{Source: SourceUnavailable} }

// Available is false when there was no data at all.
func (m Metric) Available() bool {
	return m.Source != SourceUnavailable && m.Source != ""
}

// Estimated is true for anything that is not an authoritative vendor figure.
func (m Metric) Estimated() bool {
	return m.Source != SourceVendor
}

// TokenStats 聚合统计
type TokenStats struct {
	TotalTransfers  Metric `json:"total_transfers" yaml:"total_transfers"`
	TotalHolders    Metric `json:"total_holders" yaml:"total_holders"`
	Volume24h       Metric `json:"volume_24h" yaml:"volume_24h"`
	Volume24hTokens Metric `json:"volume_24h_tokens" yaml:"volume_24h_tokens"`
	Transfers24h    int    `json:"transfers_24h" yaml:"transfers_24h"`
	PriceChange24h  Metric `json:"price_change_24h" yaml:"price_change_24h"`
	Liquidity       Metric `json:"total_liquidity" yaml:"total_liquidity"`
}

// TokenPrice 价格数据
type TokenPrice struct {
	TokenAddress    string  `json:"token_address" yaml:"token_address"`
	USDPrice        float64 `json:"usd_price" yaml:"usd_price"`
	NativePrice     float64 `json:"native_price" yaml:"native_price"`
	PriceChange24h  float64 `json:"price_change_24h" yaml:"price_change_24h"`
	HasChange24h    bool    `json:"-" yaml:"-"`
	ExchangeName    string  `json:"exchange_name,omitempty" yaml:"exchange_name,omitempty"`
	ExchangeAddress string  `json:"exchange_address,omitempty" yaml:"exchange_address,omitempty"`
	Source          string  `json:"source" yaml:"source"`
	// Fallback marks a quote from a secondary source matched by symbol.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	TokenName     string `json:"token_name,omitempty" yaml:"token_name,omitempty"`
	TokenSymbol   string `json:"token_symbol,omitempty" yaml:"token_symbol,omitempty"`
	TokenDecimals *int32 `json:"token_decimals,omitempty" yaml:"token_decimals,omitempty"`
	TokenLogo     string `json:"token_logo,omitempty" yaml:"token_logo,omitempty"`
	PossibleSpam  bool   `json:"possible_spam" yaml:"possible_spam"`
	Verified      bool   `json:"verified_contract" yaml:"verified_contract"`
}

// Metadata builds token metadata out of the fields embedded in a price quote.
// It returns nil when the quote carries no token identity.
func (p *TokenPrice) Metadata(address string) *TokenMetadata {
	if p == nil || p.TokenSymbol == "" || p.TokenDecimals == nil {
		return nil
	}
	return &TokenMetadata{
		Address:      address,
		Name:         p.TokenName,
		Symbol:       p.TokenSymbol,
		Decimals:     *p.TokenDecimals,
		PossibleSpam: p.PossibleSpam,
		Logo:         p.TokenLogo,
		Verified:     p.Verified,
	}
}

// RiskAssessment 风险评估结果
type RiskAssessment struct {
	Score           int      `json:"risk_score" yaml:"risk_score"`
	LooksSafe       bool     `json:"looks_safe" yaml:"looks_safe"`
	RiskFactors     []string `json:"risk_factors" yaml:"risk_factors"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

// TokenAnalysis is everything produced for one analysed address.
type TokenAnalysis struct {
	Chain      string           `json:"chain" yaml:"chain"`
	Metadata   TokenMetadata    `json:"metadata" yaml:"metadata"`
	Stats      TokenStats       `json:"stats" yaml:"stats"`
	Holders    []HolderEstimate `json:"holders" yaml:"holders"`
	Transfers  []TransferRecord `json:"transfers" yaml:"transfers"`
	Price      *TokenPrice      `json:"price,omitempty" yaml:"price,omitempty"`
	Assessment RiskAssessment   `json:"assessment" yaml:"assessment"`
	Warnings   []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Summary    string           `json:"summary,omitempty" yaml:"summary,omitempty"`
	AnalyzedAt time.Time        `json:"analyzed_at" yaml:"analyzed_at"`
}
