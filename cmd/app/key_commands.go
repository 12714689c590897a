package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/innwise/fieldvault/cmd/app/commands"
	"github.com/innwise/fieldvault/internal/app"
	"github.com/innwise/fieldvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-domain-key",
			Usage: "Provision the first keeper-wrapped key for a record domain",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "domain",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Record domain (hr, banking, payroll, personal, finance)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateDomainKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("domain"),
				)
			},
		},
		{
			Name:  "rotate-domain-key",
			Usage: "Retire a domain's active key and activate a fresh version",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "domain",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Record domain (hr, banking, payroll, personal, finance)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateDomainKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("domain"),
				)
			},
		},
		{
			Name:  "reencrypt-domain",
			Usage: "Re-seal a domain's records under the active key after a rotation",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "domain",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Record domain (hr, banking, payroll, personal, finance)",
				},
				&cli.UintFlag{
					Name:     "old-version",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Retired key version the records are currently sealed under",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of records to process per batch",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				recordUseCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}

				return commands.RunReencryptDomain(
					ctx,
					keyUseCase,
					recordUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("domain"),
					uint(cmd.Uint("old-version")),
					int(cmd.Int("batch-size")),
				)
			},
		},
	}
}
