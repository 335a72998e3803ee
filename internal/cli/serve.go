package cli

import (
	"github.com/KirkDiggler/dicetray/internal/handlers/api"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and websocket API",
		Long: `Serve the roll API over HTTP with a websocket feed of new rolls.

Needs a shared backend: set DICETRAY_BACKEND to redis or sqlite.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, rootOpts *RootOptions, addr string) error {
	rt, err := loadRuntime(cmd, rootOpts)
	if err != nil {
		return err
	}

	if !rt.cfg.IsRemote() {
		return NewExitError(ExitCommandError, "serve needs a remote backend: set DICETRAY_BACKEND to redis or sqlite")
	}

	if addr == "" {
		addr = rt.cfg.HTTPAddr
	}

	st, err := openStack(rt.cfg, nil, rt.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer st.Close()

	handler, err := api.New(&api.Config{
		Service: st.service,
		Logger:  rt.logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create API", err)
	}

	if err := handler.Serve(cmd.Context(), addr); err != nil {
		return WrapExitError(ExitFailure, "http server stopped", err)
	}

	return nil
}
