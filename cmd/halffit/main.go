// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wundergraph/go-halffit/internal/config"
	"github.com/wundergraph/go-halffit/internal/logging"
)

var version = "dev"

// app carries the settings shared by all subcommands.
type app struct {
	configPath string
	cfg        config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "halffit",
		Short: "Drive a half-fit allocator from scripts or an interactive shell",
		Long: `halffit runs allocator scripts against a 32 KiB half-fit arena and prints
the resulting block layout, size classes and usage figures.

Settings are read from --config, then HALFFIT_* environment variables
(HALFFIT_LOG_LEVEL, HALFFIT_LOG_FORMAT, HALFFIT_METRICS_ADDR), then flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logging.New(cmd.ErrOrStderr(), cfg.Log)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	cmd.AddCommand(newRunCmd(a), newShellCmd(a))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
