package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KirkDiggler/dicetray/internal/app"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/spf13/cobra"
)

// RollOptions holds flags for the roll command.
type RollOptions struct {
	Count int
	Name  string
}

// NewRollCommand creates the roll command.
func NewRollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RollOptions{}

	cmd := &cobra.Command{
		Use:   "roll <die>",
		Short: "Roll dice and save the result to history",
		Long: `Roll one to twenty dice of a standard type and save the roll.

The die is a face count (20) or a dice label (d20, 3d6). A count in the label
is used unless --count is given. Counts outside 1-20 are clamped.`,
		Example: `  dicetray roll d20
  dicetray roll 3d6
  dicetray roll 8 -n 4 --name Sam`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, sides, err := parseDie(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid die", err)
			}
			if cmd.Flags().Changed("count") || count == 0 {
				count = opts.Count
			}
			return runRoll(cmd, rootOpts, opts.Name, sides, count)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of dice to roll (1-20)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name saved with the roll")

	return cmd
}

// parseDie reads a face count or a dice label. count is zero when the
// argument does not name one.
func parseDie(arg string) (count, sides int, err error) {
	arg = strings.TrimSpace(arg)

	if n, convErr := strconv.Atoi(arg); convErr == nil {
		sides = n
	} else {
		count, sides, err = models.ParseDiceLabel(arg)
		if err != nil {
			return 0, 0, err
		}
		// "d6" names no count, "3d6" does
		if strings.HasPrefix(strings.ToUpper(arg), "D") {
			count = 0
		}
	}

	if !models.IsStandardDie(sides) {
		return 0, 0, fmt.Errorf("unsupported die D%d: must be one of %v", sides, models.StandardDice)
	}

	return count, sides, nil
}

func runRoll(cmd *cobra.Command, rootOpts *RootOptions, name string, sides, count int) error {
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

	progress := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		progress = io.Discard
	}
	output := newTextView(progress, cmd.ErrOrStderr())

	controller, err := app.New(&app.Config{
		Service:   st.service,
		Profile:   store,
		View:      output,
		RollDelay: rt.cfg.RollDelay,
		Logger:    rt.logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create controller", err)
	}

	if err := controller.Start(ctx); err != nil {
		// A failed history read does not stop the roll
		rt.logger.Warn("history unavailable", "err", err)
	}
	defer controller.Stop()

	if name != "" {
		controller.SetName(ctx, name)
	}

	if err := controller.SelectDie(sides); err != nil {
		return WrapExitError(ExitCommandError, "invalid die", err)
	}
	controller.SetCount(count)

	outcome := controller.Roll(ctx)
	if outcome == nil {
		return NewExitError(ExitFailure, "roll did not start")
	}

	if rootOpts.Format == "json" && outcome.Roll != nil {
		if err := writeJSON(cmd.OutOrStdout(), outcome.Roll); err != nil {
			return err
		}
	}

	if outcome.Err != nil {
		return WrapExitError(ExitFailure, "roll was not saved", outcome.Err)
	}

	return nil
}
