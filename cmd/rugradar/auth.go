package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/adamstosho/RugRadar/internal/credentials"
)

func (a *app) authCmd() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Moralis API key kept in the OS keychain",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Store an API key, read from the argument or from stdin",
				ArgsUsage: "[api key]",
				Action:    a.cmdAuthSave,
			},
			{
				Name:   "status",
				Usage:  "Show whether a key is stored",
				Action: a.cmdAuthStatus,
			},
			{
				Name:   "delete",
				Usage:  "Remove the stored key",
				Action: a.cmdAuthDelete,
			},
		},
	}
}

func (a *app) cmdAuthSave(ctx context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		fmt.Fprint(a.out, "Moralis API key: ")
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading API key: %w", err)
		}
		key = line
	}

	if err := a.store.Save(strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	fmt.Fprintln(a.out, "API key saved")
	return nil
}

func (a *app) cmdAuthStatus(ctx context.Context, cmd *cli.Command) error {
	key, err := a.store.Load()
	if errors.Is(err, credentials.ErrNotFound) {
		fmt.Fprintln(a.out, "No API key stored")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "API key stored: %s\n", mask(key))
	return nil
}

func (a *app) cmdAuthDelete(ctx context.Context, cmd *cli.Command) error {
	if err := a.store.Delete(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "API key deleted")
	return nil
}

// mask keeps the last four characters.
func mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
