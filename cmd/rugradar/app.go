package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/adamstosho/RugRadar/internal/ai/openai"
	"github.com/adamstosho/RugRadar/internal/analysis"
	"github.com/adamstosho/RugRadar/internal/configs"
	"github.com/adamstosho/RugRadar/internal/credentials"
	"github.com/adamstosho/RugRadar/internal/data/collector"
	"github.com/adamstosho/RugRadar/internal/data/collector/binance"
	"github.com/adamstosho/RugRadar/internal/data/collector/moralis"
	"github.com/adamstosho/RugRadar/internal/logging"
	"github.com/adamstosho/RugRadar/internal/risk"
)

const (
	apiKeyEnvVar = "MORALIS_API_KEY"
	aiKeyEnvVar  = "OPENAI_API_KEY"
	configEnvVar = "RUGRADAR_CONFIG"
	homeEnvVar   = "RUGRADAR_HOME"
)

const (
	confFlag      = "conf"
	apiKeyFlag    = "api-key"
	homeFlag      = "home"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	chainFlag     = "chain"
	formatFlag    = "format"
	timeoutFlag   = "timeout"
	explainFlag   = "explain"
	aiKeyFlag     = "ai-key"
	intervalFlag  = "interval"
)

// Flags are built per command tree, urfave/cli keeps parse state inside them.

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    confFlag,
			Aliases: []string{"c"},
			Usage:   "config file, JSON or YAML by extension, eg: -conf config.yaml",
			Sources: cli.EnvVars(configEnvVar),
		},
		&cli.StringFlag{
			Name:    apiKeyFlag,
			Usage:   "Moralis API key (optional, defaults to config file then OS keychain)",
			Sources: cli.EnvVars(apiKeyEnvVar),
		},
		&cli.StringFlag{
			Name:    homeFlag,
			Usage:   "directory for the API key fallback file (optional, defaults to $HOME/.rugradar)",
			Sources: cli.EnvVars(homeEnvVar),
		},
		&cli.StringFlag{
			Name:  logLevelFlag,
			Usage: "debug, info, warn or error (optional, overrides config)",
		},
		&cli.StringFlag{
			Name:  logFormatFlag,
			Usage: "text or json (optional, overrides config)",
		},
	}
}

func newChainFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  chainFlag,
		Usage: "chain of the contract, eg: eth, bsc, polygon (optional, overrides config)",
	}
}

func newFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    formatFlag,
		Aliases: []string{"o"},
		Usage:   "output format [text, json, yaml]",
		Value:   "text",
	}
}

// analysisFlags tune how an analysis runs.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		newChainFlag(),
		newFormatFlag(),
		&cli.DurationFlag{
			Name:  timeoutFlag,
			Usage: "timeout of one analysis (optional, overrides config)",
		},
		&cli.BoolFlag{
			Name:  explainFlag,
			Usage: "add a plain-language summary written by an OpenAI compatible model",
		},
		&cli.StringFlag{
			Name:    aiKeyFlag,
			Usage:   "API key of the summary model (optional, defaults to ai_config.api_key)",
			Sources: cli.EnvVars(aiKeyEnvVar),
		},
	}
}

// app carries what every command needs once Before has run.
type app struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
	config *configs.Config
	store  *credentials.Store
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.Command {
	a := &app{in: in, out: out, logger: logging.Discard()}

	return &cli.Command{
		Name:      "rugradar",
		Version:   fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:     "Heuristic risk assessment of ERC-20 tokens",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			a.analyzeCmd(),
			a.watchCmd(),
			a.probeCmd(),
			a.authCmd(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			config, err := configs.Load(cmd.String(confFlag))
			if err != nil {
				return ctx, err
			}
			if v := cmd.String(logLevelFlag); v != "" {
				config.LogLevel = v
			}
			if v := cmd.String(logFormatFlag); v != "" {
				config.LogFormat = v
			}
			a.config = config
			a.logger = logging.New(errOut, config.LogFormat, config.LogLevel)

			dir := cmd.String(homeFlag)
			if dir == "" {
				dir = credentials.DefaultDir()
			}
			a.store = credentials.NewStore(dir, a.logger)

			a.logger.Debug("loaded config", "path", cmd.String(confFlag), "chain", config.Chain)
			return ctx, nil
		},
	}
}

// apiKey resolves the vendor key: flag or env, then config file, then keychain.
func (a *app) apiKey(cmd *cli.Command) string {
	if k := strings.TrimSpace(cmd.String(apiKeyFlag)); k != "" {
		return k
	}
	if k := strings.TrimSpace(a.config.Moralis.APIKey); k != "" {
		return k
	}
	k, err := a.store.Load()
	if err != nil {
		a.logger.Debug("no stored API key", "error", err)
		return ""
	}
	return k
}

func (a *app) chain(cmd *cli.Command) string {
	if c := cmd.String(chainFlag); c != "" {
		return c
	}
	return a.config.Chain
}

func (a *app) newClient(cmd *cli.Command) (*moralis.Client, error) {
	timeout, err := a.config.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	wait, err := a.config.RetryWait()
	if err != nil {
		return nil, err
	}

	client, err := moralis.New(moralis.Options{
		APIKey:     a.apiKey(cmd),
		BaseURL:    a.config.Moralis.BaseURL,
		Timeout:    timeout,
		RetryCount: a.config.Moralis.RetryCount,
		RetryWait:  wait,
		Proxy:      a.config.Proxy,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("creating moralis client: %w", err)
	}
	return client, nil
}

// newService wires gateway, quote fallback, scorer and the optional narrator.
func (a *app) newService(cmd *cli.Command) (*analysis.Service, error) {
	client, err := a.newClient(cmd)
	if err != nil {
		return nil, err
	}

	var quotes []collector.QuoteSource
	if a.config.ExchangeConfig.Enabled {
		quotes = append(quotes, binance.NewBinanceQuoteSource(a.config.ExchangeConfig.BaseURL, a.config.ExchangeConfig.QuoteAsset))
	}
	dataCollector := collector.NewMultiSourceCollector([]collector.DataSource{client}, quotes, a.logger)

	timeout, err := a.config.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if d := cmd.Duration(timeoutFlag); d > 0 {
		timeout = d
	}
	params, err := a.config.EstimationParams()
	if err != nil {
		return nil, err
	}

	service := analysis.NewService(dataCollector, risk.NewBasicScorer(a.config.RiskParams), a.logger, analysis.Options{
		Timeout:         timeout,
		Estimation:      params,
		RecentTransfers: a.config.Estimation.RecentTransfers,
	})

	if a.config.AIConfig.Enabled || cmd.Bool(explainFlag) {
		key := cmd.String(aiKeyFlag)
		if key == "" {
			key = a.config.AIConfig.APIKey
		}
		if key == "" {
			return nil, fmt.Errorf("a summary was requested but no model API key is set, use --%s or %s", aiKeyFlag, aiKeyEnvVar)
		}
		service.SetNarrator(openai.NewOpenAINarrator(key, a.config.AIConfig.ModelType, a.config.AIConfig.BaseURL))
		a.logger.Debug("narrator enabled", "model", a.config.AIConfig.ModelType)
	}

	return service, nil
}
