package cli

import (
	"github.com/KirkDiggler/dicetray/internal/handlers/discord"
	"github.com/spf13/cobra"
)

// NewBotCommand creates the bot command.
func NewBotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Discord bot",
		Long: `Run the Discord bot with the /dice panel and /roll command.

Reads DISCORD_TOKEN, APPLICATION_ID, GUILD_ID and FEED_CHANNEL_ID. Needs a
shared backend: set DICETRAY_BACKEND to redis or sqlite.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, rootOpts)
		},
	}

	return cmd
}

func runBot(cmd *cobra.Command, rootOpts *RootOptions) error {
	ctx := cmd.Context()

	rt, err := loadRuntime(cmd, rootOpts)
	if err != nil {
		return err
	}

	if !rt.cfg.IsRemote() {
		return NewExitError(ExitCommandError, "bot needs a remote backend: set DICETRAY_BACKEND to redis or sqlite")
	}

	if rt.cfg.DiscordToken == "" {
		return NewExitError(ExitCommandError, "DISCORD_TOKEN environment variable is required")
	}

	st, err := openStack(rt.cfg, nil, rt.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer st.Close()

	bot, err := discord.New(&discord.Config{
		Token:         rt.cfg.DiscordToken,
		ApplicationID: rt.cfg.ApplicationID,
		GuildID:       rt.cfg.GuildID,
		FeedChannelID: rt.cfg.FeedChannelID,
		ProfileDir:    rt.cfg.ProfileDir,
		RollDelay:     rt.cfg.RollDelay,
		Service:       st.service,
		Logger:        rt.logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create bot", err)
	}

	if err := bot.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to start bot", err)
	}

	rt.logger.Info("bot is running, press CTRL-C to exit")
	<-ctx.Done()

	rt.logger.Info("shutting down")
	if err := bot.Stop(); err != nil {
		return WrapExitError(ExitFailure, "failed to stop bot", err)
	}

	return nil
}
