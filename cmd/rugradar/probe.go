package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/adamstosho/RugRadar/internal/analysis"
	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/report"
)

// usdtAddress is probed when no address is given.
const usdtAddress = "0xdac17f958d2ee523a2206206994597c13d831ec7"

func (a *app) probeCmd() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Call every vendor endpoint once and report status and latency",
		ArgsUsage: "[contract address, defaults to USDT]",
		Flags: []cli.Flag{
			newChainFlag(),
			newFormatFlag(),
		},
		Action: a.cmdProbe,
	}
}

func (a *app) cmdProbe(ctx context.Context, cmd *cli.Command) error {
	format, err := report.ParseFormat(cmd.String(formatFlag))
	if err != nil {
		return err
	}

	address := usdtAddress
	if cmd.NArg() > 0 {
		var ok bool
		if address, ok = evm.Normalize(cmd.Args().First()); !ok {
			return fmt.Errorf("%w: %q", analysis.ErrInvalidAddress, cmd.Args().First())
		}
	}

	client, err := a.newClient(cmd)
	if err != nil {
		return err
	}
	results := client.Probe(ctx, address, a.chain(cmd))

	switch format {
	case report.FormatJSON:
		e := json.NewEncoder(a.out)
		e.SetIndent("", "  ")
		return e.Encode(results)
	case report.FormatYAML:
		return yaml.NewEncoder(a.out).Encode(results)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "METHOD\tENDPOINT\tSTATUS\tLATENCY\tRESULT\n")
	for _, r := range results {
		result := "ok"
		if !r.OK {
			result = "failed"
		}
		if r.Message != "" {
			result += ": " + r.Message
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Method, r.Endpoint, r.Status, r.Latency.Round(time.Millisecond), result)
	}
	return tw.Flush()
}
