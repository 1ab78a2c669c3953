package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"winnow/internal/daemon"
	"winnow/internal/journal"
	"winnow/internal/logging"
	"winnow/internal/services/handbrake"
	"winnow/internal/transcode"
	"winnow/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch configured directories and process media files as they settle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			cli := handbrake.NewCLI(handbrake.WithBinary(cfg.HandBrakeBinary()))
			orch := transcode.New(signalCtx, cfg, transcode.Deps{
				Logger:   logger,
				Journal:  store,
				Encoder:  cli,
				Exporter: cli,
			})

			w, err := watcher.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}

			return daemon.New(cfg, logger, orch, w).Run(signalCtx)
		},
	}
}
