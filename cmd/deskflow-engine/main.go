package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/deskflow/deskflow/pkg/cmd"
	"github.com/deskflow/deskflow/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "deskflow-engine",
		Usage:                 "Execute automation workflows for helpdesk events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus transport (kafka, memory)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
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
				Name:    "redis-addr",
				Usage:   "Redis address for the inbound event queue (empty disables the queue receiver)",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-queue",
				Usage:   "Redis list the helpdesk pushes events onto",
				Value:   "deskflow:events",
				Sources: cli.EnvVars("REDIS_QUEUE"),
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

			logger := log.WithModule("engine")
			logger.InfoContext(ctx, "Initializing Deskflow engine")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "engine", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			engine := NewEngine(
				logger,
				persistence,
				eventBus,
				command.String("helpdesk-url"),
				command.String("helpdesk-token"),
				command.String("redis-addr"),
				command.String("redis-queue"),
			)

			return engine.Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
