package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/deskflow/deskflow/pkg/cmd"
	"github.com/deskflow/deskflow/pkg/log"
)

const defaultPort = 9080

func main() {
	command := &cli.Command{
		Name:                  "deskflow-api",
		Usage:                 "Manage helpdesk automation workflows and webhooks",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "helpdesk-url",
				Usage:   "Base URL of the helpdesk internal API",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("HELPDESK_URL"),
			},
			&cli.StringFlag{
				Name:    "helpdesk-token",
				Usage:   "Bearer token for the helpdesk internal API",
				Sources: cli.EnvVars("HELPDESK_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Deskflow API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				command.String("helpdesk-url"),
				command.String("helpdesk-token"),
			)

			return api.Start(ctx, int(command.Int("port")))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
