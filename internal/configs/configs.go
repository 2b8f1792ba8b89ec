package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamstosho/RugRadar/internal/estimate"
	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/risk"
)

// PlaceholderAPIKey is the value shipped in example env files.
const PlaceholderAPIKey = "your_moralis_api_key_here"

var ErrMissingAPIKey = errors.New("Moralis API key is not configured")

// CheckAPIKey rejects empty and placeholder keys.
func CheckAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || key == PlaceholderAPIKey {
		return ErrMissingAPIKey
	}
	return nil
}

type Config struct {
	// 基础配置
	Chain     string `json:"chain" yaml:"chain"`           // 默认链
	Timeout   string `json:"timeout" yaml:"timeout"`       // 单次分析超时
	LogLevel  string `json:"log_level" yaml:"log_level"`   // debug/info/warn/error
	LogFormat string `json:"log_format" yaml:"log_format"` // json/text
	Proxy     string `json:"proxy" yaml:"proxy"`

	Moralis MoralisConfig `json:"moralis" yaml:"moralis"`

	Estimation EstimationConfig `json:"estimation" yaml:"estimation"`

	// 风险评分参数
	RiskParams risk.ScoringParameters `json:"risk_parameters" yaml:"risk_parameters"`

	// AI 摘要参数
	AIConfig AIConfig `json:"ai_config" yaml:"ai_config"`

	// 交易所行情配置
	ExchangeConfig ExchangeConfig `json:"exchange_config" yaml:"exchange_config"`
}

type MoralisConfig struct {
	APIKey     string `json:"api_key" yaml:"api_key"`
	BaseURL    string `json:"base_url" yaml:"base_url"`
	RetryCount int    `json:"retry_count" yaml:"retry_count"`
	RetryWait  string `json:"retry_wait" yaml:"retry_wait"`
}

type EstimationConfig struct {
	PageSize           int     `json:"page_size" yaml:"page_size"`
	HolderLimit        int     `json:"holder_limit" yaml:"holder_limit"`
	RecencyWindow      string  `json:"recency_window" yaml:"recency_window"`
	VolumeWindow       string  `json:"volume_window" yaml:"volume_window"`
	TransferMultiplier float64 `json:"transfer_multiplier" yaml:"transfer_multiplier"`
	TransferFloor      int64   `json:"transfer_floor" yaml:"transfer_floor"`
	MaxHolderEstimate  int64   `json:"max_holder_estimate" yaml:"max_holder_estimate"`
	RecentTransfers    int     `json:"recent_transfers" yaml:"recent_transfers"` // 展示的最近转账条数
}

type AIConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	APIKey    string `json:"api_key" yaml:"api_key"`       // AI服务API密钥
	ModelType string `json:"model_type" yaml:"model_type"` // AI模型类型
	BaseURL   string `json:"base_url" yaml:"base_url"`     // OpenAI 兼容接口地址
}

type ExchangeConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	BaseURL    string `json:"base_url" yaml:"base_url"`
	QuoteAsset string `json:"quote_asset" yaml:"quote_asset"`
}

// Default returns a config with every field set to its default value.
func Default() *Config {
	p := estimate.DefaultParameters()
	return &Config{
		Chain:     "eth",
		Timeout:   "30s",
		LogLevel:  "info",
		LogFormat: "text",
		Moralis: MoralisConfig{
			RetryCount: 2,
			RetryWait:  "500ms",
		},
		Estimation: EstimationConfig{
			PageSize:           p.PageSize,
			HolderLimit:        p.HolderLimit,
			RecencyWindow:      p.RecencyWindow.String(),
			VolumeWindow:       p.VolumeWindow.String(),
			TransferMultiplier: p.TransferMultiplier,
			TransferFloor:      p.TransferFloor,
			MaxHolderEstimate:  p.MaxHolderEstimate,
			RecentTransfers:    20,
		},
		RiskParams: risk.DefaultScoringParameters(),
		AIConfig: AIConfig{
			ModelType: "gpt-4o-mini",
		},
		ExchangeConfig: ExchangeConfig{
			Enabled:    true,
			QuoteAsset: "USDT",
		},
	}
}

// Load reads a JSON or YAML file, chosen by extension, over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, config)
	default:
		err = json.Unmarshal(content, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks everything except the API key, which may come from the keychain later.
func (c *Config) Validate() error {
	var errs []error

	if !evm.IsChain(c.Chain) {
		errs = append(errs, fmt.Errorf("unsupported chain %q", c.Chain))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RetryWait(); err != nil {
		errs = append(errs, err)
	}
	if c.Moralis.RetryCount < 0 || c.Moralis.RetryCount > 5 {
		errs = append(errs, fmt.Errorf("moralis.retry_count must be within 0..5, got %d", c.Moralis.RetryCount))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported log_format %q", c.LogFormat))
	}
	if _, err := c.EstimationParams(); err != nil {
		errs = append(errs, err)
	}
	if c.Estimation.RecentTransfers < 0 {
		errs = append(errs, errors.New("estimation.recent_transfers must not be negative"))
	}
	if err := c.RiskParams.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.AIConfig.Enabled && c.AIConfig.APIKey == "" {
		errs = append(errs, errors.New("ai_config.api_key is required when ai_config.enabled is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) TimeoutDuration() (time.Duration, error) {
	return positiveDuration("timeout", c.Timeout)
}

func (c *Config) RetryWait() (time.Duration, error) {
	return positiveDuration("moralis.retry_wait", c.Moralis.RetryWait)
}

// EstimationParams converts the estimation section into validated parameters.
func (c *Config) EstimationParams() (estimate.Parameters, error) {
	recency, err := positiveDuration("estimation.recency_window", c.Estimation.RecencyWindow)
	if err != nil {
		return estimate.Parameters{}, err
	}
	volume, err := positiveDuration("estimation.volume_window", c.Estimation.VolumeWindow)
	if err != nil {
		return estimate.Parameters{}, err
	}

	p := estimate.Parameters{
		PageSize:           c.Estimation.PageSize,
		HolderLimit:        c.Estimation.HolderLimit,
		RecencyWindow:      recency,
		VolumeWindow:       volume,
		TransferMultiplier: c.Estimation.TransferMultiplier,
		TransferFloor:      c.Estimation.TransferFloor,
		MaxHolderEstimate:  c.Estimation.MaxHolderEstimate,
	}
	if err := p.Validate(); err != nil {
		return estimate.Parameters{}, fmt.Errorf("estimation: %w", err)
	}
	return p, nil
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}
