package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/rentaldesk/searchsync/cmd/app/commands"
)

func getIndexCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init-index",
			Usage: "Create the search index when it does not exist",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer shutdown(ctx, container)

				syncUseCase, err := container.SyncUseCase(ctx)
				if err != nil {
					return err
				}

				return commands.RunInitIndex(
					ctx,
					syncUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					container.Config().SearchIndexName,
				)
			},
		},
		{
			Name:  "reindex",
			Usage: "Rebuild search documents from the database",
			Flags: []cli.Flag{
				&cli.Int64SliceFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Usage:   "Item id to reindex, repeatable (omit to reindex every item)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer shutdown(ctx, container)

				syncUseCase, err := container.SyncUseCase(ctx)
				if err != nil {
					return err
				}

				return commands.RunReindex(
					ctx,
					syncUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Int64Slice("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "recreate-index",
			Usage: "Drop the search index, create it again and reindex every item",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer shutdown(ctx, container)

				syncUseCase, err := container.SyncUseCase(ctx)
				if err != nil {
					return err
				}

				return commands.RunRecreateIndex(
					ctx,
					syncUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "test-connection",
			Usage: "Check that the search backend is reachable",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer shutdown(ctx, container)

				syncUseCase, err := container.SyncUseCase(ctx)
				if err != nil {
					return err
				}

				return commands.RunTestConnection(
					ctx,
					syncUseCase,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
