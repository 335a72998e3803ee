package cli

import (
	"io"

	"github.com/KirkDiggler/dicetray/internal/app"
	"github.com/KirkDiggler/dicetray/internal/view"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent rolls",
		Long: `Show up to the 50 most recent rolls, newest first.

Rolls made from this profile are marked with an asterisk.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, mine)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "only show rolls made from this profile")

	return cmd
}

func runHistory(cmd *cobra.Command, rootOpts *RootOptions, mine bool) error {
	ctx := cmd.Context()

	rt, err := loadRuntime(cmd, rootOpts)
	if err != nil {
		return err
	}

	store, err := openProfile(rt.cfg, rt.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open profile", err)
	}

	st, err := openStack(rt.cfg, store, rt.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer st.Close()

	output := newTextView(io.Discard, cmd.ErrOrStderr())
	controller, err := app.New(&app.Config{
		Service: st.service,
		Profile: store,
		View:    output,
		Logger:  rt.logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create controller", err)
	}

	if err := controller.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, view.PlaceholderLoadFailed, err)
	}
	defer controller.Stop()

	if mine {
		if err := controller.SetFilter(ctx, app.FilterMine); err != nil {
			return WrapExitError(ExitFailure, view.PlaceholderLoadFailed, err)
		}
	}

	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), controller.History())
	}

	return view.WriteText(cmd.OutOrStdout(), output.lastHistory())
}
