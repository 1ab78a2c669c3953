package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"winnow/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Where to write the sample config")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "output dir:     %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "log dir:        %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "handbrake:      %s\n", cfg.HandBrakeBinary())
			fmt.Fprintf(out, "ffprobe:        %s\n", cfg.FFprobeBinary())
			fmt.Fprintf(out, "preset:         %s\n", valueOrDash(cfg.Encode.Preset))
			fmt.Fprintf(out, "output format:  %s\n", cfg.Encode.OutputFormat)
			fmt.Fprintf(out, "target format:  %s\n", valueOrDash(cfg.Target.Format))
			fmt.Fprintf(out, "target codec:   %s\n", valueOrDash(cfg.Target.VideoCodec))
			fmt.Fprintf(out, "target profile: %s\n", valueOrDash(cfg.Target.VideoProfile))
			fmt.Fprintf(out, "max height:     %s\n", dimensionOrDash(cfg.Target.MaxHeight))
			fmt.Fprintf(out, "max width:      %s\n", dimensionOrDash(cfg.Target.MaxWidth))
			fmt.Fprintf(out, "watch dirs:     %s\n", valueOrDash(strings.Join(cfg.Watch.Dirs, ", ")))
			return nil
		},
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func dimensionOrDash(value *int) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *value)
}
