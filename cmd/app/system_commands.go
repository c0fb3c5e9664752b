package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/rentaldesk/searchsync/cmd/app/commands"
	"github.com/rentaldesk/searchsync/internal/app"
	"github.com/rentaldesk/searchsync/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create the back office schema in a development or test database",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Value: 0,
					Usage: "Apply N migrations (negative rolls back N); 0 applies all pending",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdown(ctx, container)

				return commands.RunMigrations(
					container.Logger(),
					cfg.DBDriver,
					cfg.DBConnectionString,
					int(cmd.Int("steps")),
				)
			},
		},
	}
}
