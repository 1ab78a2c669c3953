package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"winnow/internal/journal"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show the job journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no jobs recorded")
				return nil
			}

			headers := []string{"ID", "STATUS", "PROGRESS", "SOURCE", "RESULT", "UPDATED"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					shortID(entry.ID),
					string(entry.Status),
					progressCell(entry),
					filepath.Base(entry.SourcePath),
					resultCell(entry),
					entry.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func progressCell(entry *journal.Entry) string {
	if entry.Status.Terminal() && entry.Status != journal.StatusCancelled {
		return ""
	}
	if entry.ProgressPercent <= 0 {
		return ""
	}
	return strconv.FormatFloat(entry.ProgressPercent, 'f', 1, 64) + "%"
}

func resultCell(entry *journal.Entry) string {
	switch entry.Status {
	case journal.StatusCompleted:
		return filepath.Base(entry.DestinationPath)
	case journal.StatusFailed, journal.StatusCancelled:
		return entry.ErrorMessage
	default:
		return ""
	}
}
