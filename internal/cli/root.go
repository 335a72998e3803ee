// Package cli implements the dicetray command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/KirkDiggler/dicetray/internal/common/logging"
	"github.com/KirkDiggler/dicetray/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile  string
	LogLevel string
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dicetray CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dicetray",
		Short: "dicetray - roll dice and share the history",
		Long: `Roll standard dice (D4 to D100) and keep a history of every roll.

History lives in the local profile, in Redis or in SQLite depending on
DICETRAY_BACKEND. The bot and serve commands share a remote history between
Discord and HTTP clients.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment from this file instead of .env")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRollCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBotCommand(opts))

	return cmd
}

// runtime is the configuration and logger shared by every command
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadRuntime reads configuration and builds the process logger
func loadRuntime(cmd *cobra.Command, opts *RootOptions) (*runtime, error) {
	var envFiles []string
	if opts.EnvFile != "" {
		envFiles = append(envFiles, opts.EnvFile)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger := logging.New(logging.Config{
		Service: "dicetray",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cmd.ErrOrStderr(),
	})

	return &runtime{
		cfg:    cfg,
		logger: logger.With("backend", cfg.Backend),
	}, nil
}
