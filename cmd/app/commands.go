package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rentaldesk/searchsync/internal/app"
	"github.com/rentaldesk/searchsync/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getIndexCommands()...)
	cmds = append(cmds, getFieldCryptoCommands()...)
	return cmds
}

// formatFlag is shared by commands that print results.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// loadContainer loads and validates configuration and builds a container.
func loadContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}

func shutdown(ctx context.Context, container *app.Container) {
	_ = container.Shutdown(ctx)
}
