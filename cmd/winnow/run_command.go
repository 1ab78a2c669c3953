package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"winnow/internal/journal"
	"winnow/internal/logging"
	"winnow/internal/services/handbrake"
	"winnow/internal/transcode"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE...",
		Short: "Process one or more media files immediately",
		Args:  cobra.MinimumNArgs(1),
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

			failed := 0
			for _, path := range args {
				if signalCtx.Err() != nil {
					return signalCtx.Err()
				}
				job, err := orch.Run(signalCtx, path)
				switch {
				case err != nil:
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", path, err)
				case job.DestinationPath == "":
					fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s (already compliant)\n", path)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "encoded: %s -> %s\n", path, job.DestinationPath)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(args))
			}
			return nil
		},
	}
}
