package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamstosho/RugRadar/internal/estimate"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCheckAPIKey(t *testing.T) {
	assert.ErrorIs(t, CheckAPIKey(""), ErrMissingAPIKey)
	assert.ErrorIs(t, CheckAPIKey(" \t"), ErrMissingAPIKey)
	assert.ErrorIs(t, CheckAPIKey(PlaceholderAPIKey), ErrMissingAPIKey)
	assert.NoError(t, CheckAPIKey("abc123"))
}

func TestDefault_IsValid(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())

	timeout, err := config.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	params, err := config.EstimationParams()
	require.NoError(t, err)
	assert.Equal(t, estimate.DefaultParameters(), params)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "json overrides keep other defaults",
			file: "config.json",
			content: `{
				"chain": "polygon",
				"timeout": "10s",
				"moralis": {"api_key": "k", "retry_count": 1},
				"risk_parameters": {"spam_points": 45}
			}`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "polygon", c.Chain)
				assert.Equal(t, "k", c.Moralis.APIKey)
				assert.Equal(t, 1, c.Moralis.RetryCount)
				assert.Equal(t, "500ms", c.Moralis.RetryWait)
				assert.Equal(t, 45, c.RiskParams.SpamPoints)
				assert.Equal(t, 40, c.RiskParams.WellKnownDiscount)
				assert.Equal(t, 100, c.Estimation.PageSize)
			},
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
chain: bsc
log_level: debug
estimation:
  holder_limit: 5
  recency_window: 168h
risk_parameters:
  well_known: [USDT, BUSD]
exchange_config:
  enabled: false
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "bsc", c.Chain)
				assert.Equal(t, "debug", c.LogLevel)
				assert.Equal(t, []string{"USDT", "BUSD"}, c.RiskParams.WellKnown)
				assert.False(t, c.ExchangeConfig.Enabled)

				p, err := c.EstimationParams()
				require.NoError(t, err)
				assert.Equal(t, 5, p.HolderLimit)
				assert.Equal(t, 7*24*time.Hour, p.RecencyWindow)
			},
		},
		{
			name:    "unknown chain",
			file:    "config.json",
			content: `{"chain": "dogechain"}`,
			wantErr: true,
		},
		{
			name:    "bad duration",
			file:    "config.yml",
			content: "timeout: soon\n",
			wantErr: true,
		},
		{
			name:    "page size above vendor cap",
			file:    "config.json",
			content: `{"estimation": {"page_size": 1000}}`,
			wantErr: true,
		},
		{
			name:    "ai enabled without key",
			file:    "config.json",
			content: `{"ai_config": {"enabled": true}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			file:    "config.json",
			content: `{"chain":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := Load(writeFile(t, tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
