package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/adamstosho/RugRadar/internal/analysis"
	"github.com/adamstosho/RugRadar/internal/report"
)

func (a *app) watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Read addresses from stdin, a new address supersedes the one being analyzed",
		Description: "Each line is a contract address. The line \"reset\" drops the current analysis.\n" +
			"Without --interval the command exits once input ends and the last analysis is printed.",
		Flags: append(analysisFlags(), &cli.DurationFlag{
			Name:  intervalFlag,
			Usage: "re-analyze the current address this often (optional, 0 disables)",
		}),
		Action: a.cmdWatch,
	}
}

func (a *app) cmdWatch(ctx context.Context, cmd *cli.Command) error {
	format, err := report.ParseFormat(cmd.String(formatFlag))
	if err != nil {
		return err
	}
	service, err := a.newService(cmd)
	if err != nil {
		return err
	}
	session := analysis.NewSession(service, a.logger)
	chain := a.chain(cmd)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			a.logger.Error("reading input", "error", err)
		}
	}()

	var tick <-chan time.Time
	if d := cmd.Duration(intervalFlag); d > 0 {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		tick = ticker.C
	}

	var (
		results <-chan analysis.Result
		current string
	)
	for {
		select {
		case <-ctx.Done():
			session.Reset()
			return nil

		case line, ok := <-lines:
			if !ok {
				lines = nil
				if results == nil && tick == nil {
					return nil
				}
				continue
			}
			switch line {
			case "":
				continue
			case "reset":
				session.Reset()
				results, current = nil, ""
				continue
			}
			current = line
			results = session.Submit(ctx, current, chain)

		case r, ok := <-results:
			results = nil
			if !ok {
				continue
			}
			if r.Err != nil {
				fmt.Fprintf(a.out, "%s: %s\n", r.Address, analysis.UserMessage(r.Err))
			} else if err := report.Render(a.out, r.Analysis, format); err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}
			if lines == nil && tick == nil {
				return nil
			}

		case <-tick:
			if current != "" && results == nil {
				a.logger.Debug("refreshing", "address", current)
				results = session.Submit(ctx, current, chain)
			}
		}
	}
}
