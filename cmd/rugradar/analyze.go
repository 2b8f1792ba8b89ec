package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/adamstosho/RugRadar/internal/report"
)

var errNoAddress = errors.New("contract address required")

func (a *app) analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Assess the risk of one ERC-20 token",
		ArgsUsage: "<contract address>",
		Flags:     analysisFlags(),
		Action:    a.cmdAnalyze,
	}
}

func (a *app) cmdAnalyze(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errNoAddress
	}
	format, err := report.ParseFormat(cmd.String(formatFlag))
	if err != nil {
		return err
	}

	service, err := a.newService(cmd)
	if err != nil {
		return err
	}

	result, err := service.Analyze(ctx, cmd.Args().First(), a.chain(cmd))
	if err != nil {
		return err
	}

	if err := report.Render(a.out, result, format); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
