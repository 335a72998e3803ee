package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/KirkDiggler/dicetray/internal/app"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
	"github.com/bwmarrin/discordgo"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	service    roller.Service
	sessions   *sessionManager
	feed       history.Subscription
	config     *Config
	logger     *slog.Logger
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Optional channel that announces every stored roll
	FeedChannelID string

	// Optional directory for per-user profile files; empty keeps profiles in memory
	ProfileDir string

	// Pause before roll results are shown
	RollDelay time.Duration

	// Roller service
	Service roller.Service

	// Optional logger
	Logger *slog.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.Service == nil {
		return nil, errors.New("roller service cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		service:    cfg.Service,
		sessions:   newSessionManager(cfg.Service, cfg.ProfileDir, cfg.RollDelay, logger),
		config:     cfg,
		logger:     logger,
	}

	// Register the interaction handler
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start opens the Discord connection, registers commands and starts the
// feed announcements
func (b *Bot) Start(ctx context.Context) error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	for _, cmd := range []CommandHandler{
		NewDiceCommand(b.sessions),
		NewRollCommand(b.sessions),
	} {
		if err := b.RegisterCommand(cmd); err != nil {
			return fmt.Errorf("failed to register %s command: %w", cmd.GetName(), err)
		}
	}

	if b.config.FeedChannelID != "" {
		output, err := b.service.WatchRolls(ctx, &roller.WatchRollsInput{
			OnRoll: b.announce,
		})
		if err != nil {
			return fmt.Errorf("failed to watch rolls: %w", err)
		}
		b.feed = output.Subscription
	}

	b.logger.Info("bot is now running")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	if b.feed != nil {
		if err := b.feed.Unsubscribe(); err != nil {
			b.logger.Warn("failed to stop roll feed", "err", err)
		}
	}

	b.sessions.closeAll()

	appID := b.appID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn("failed to delete command", "command", cmdName, "command_id", cmdID, "err", err)
		} else {
			b.logger.Info("deleted command", "command", cmdName, "command_id", cmdID)
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	// If guild ID is provided, register command for that specific guild
	// Otherwise, register it globally
	if b.config.GuildID != "" {
		b.logger.Info("registering command for guild", "command", cmd.GetName(), "guild_id", b.config.GuildID)
	} else {
		b.logger.Info("registering command globally", "command", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	// Store the command handler and its ID
	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID

	return nil
}

// appID falls back to the session user ID if application ID is not provided
func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	return b.session.State.User.ID
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		// Handle slash commands
		name := i.ApplicationCommandData().Name
		if h, ok := b.commands[name]; ok {
			if err := h.Handle(s, i); err != nil {
				b.logger.Error("failed to handle command", "command", name, "err", err)
			}
		}
	case discordgo.InteractionMessageComponent:
		// Handle buttons
		if err := b.handleComponentInteraction(s, i); err != nil {
			b.logger.Error("failed to handle component interaction", "custom_id", i.MessageComponentData().CustomID, "err", err)
		}
	}
}

// handleComponentInteraction applies a panel button to the user's controller
// and redraws the panel
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	action, argument := parseCustomID(i.MessageComponentData().CustomID)

	userID, userName := interactionUser(i)
	if userID == "" {
		return RespondWithError(s, i, "Could not tell who you are.")
	}

	// Acknowledge now; rolls and reloads may take longer than Discord waits
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return fmt.Errorf("failed to defer panel update: %w", err)
	}

	ctx := context.Background()
	session, err := b.sessions.get(ctx, userID, userName)
	if err != nil {
		return fmt.Errorf("failed to get panel: %w", err)
	}

	if err := applyAction(ctx, session.controller, action, argument); err != nil {
		session.view.Notice(err.Error())
	}

	sides, _ := session.controller.Selection()
	embeds, components := session.view.panelMessage(sides, session.controller.Filter())

	return EditPanel(s, i, embeds, components)
}

// panelController is the part of the controller the panel buttons drive
type panelController interface {
	SelectDie(sides int) error
	SetCount(count int)
	IncrementCount()
	DecrementCount()
	Roll(ctx context.Context) *app.RollOutcome
	SetFilter(ctx context.Context, filter app.Filter) error
}

// applyAction maps a button to a controller operation
func applyAction(ctx context.Context, controller panelController, action, argument string) error {
	switch action {
	case actionSelect:
		sides, err := strconv.Atoi(argument)
		if err != nil {
			return fmt.Errorf("unknown die: %s", argument)
		}
		return controller.SelectDie(sides)
	case actionCount:
		switch argument {
		case countIncrement:
			controller.IncrementCount()
		case countDecrement:
			controller.DecrementCount()
		default:
			count, err := strconv.Atoi(argument)
			if err != nil {
				return fmt.Errorf("unknown count: %s", argument)
			}
			controller.SetCount(count)
		}
		return nil
	case actionRoll:
		// Failures are already shown on the panel
		controller.Roll(ctx)
		return nil
	case actionFilter:
		filter := app.FilterAll
		if argument == filterMine {
			filter = app.FilterMine
		}
		// Load failures are already shown as the history placeholder
		_ = controller.SetFilter(ctx, filter)
		return nil
	default:
		return fmt.Errorf("unknown button: %s", action)
	}
}

// announce posts a stored roll to the feed channel
func (b *Bot) announce(roll *models.Roll) {
	if _, err := b.session.ChannelMessageSend(b.config.FeedChannelID, announcement(roll)); err != nil {
		b.logger.Warn("failed to announce roll", "roll_id", roll.ID, "err", err)
	}
}
