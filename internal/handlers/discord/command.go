package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// CommandHandler defines the interface for Discord command handlers
type CommandHandler interface {
	// GetName returns the command name
	GetName() string

	// GetCommand returns the application command definition
	GetCommand() *discordgo.ApplicationCommand

	// Handle processes a Discord interaction
	Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error
}

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
}

// GetName returns the command name
func (c *BaseCommand) GetName() string {
	return c.Name
}

// GetCommand returns the application command definition
func (c *BaseCommand) GetCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
}

// Component custom IDs are "<action>:<argument>"
const (
	actionSelect = "dice_select"
	actionCount  = "dice_count"
	actionRoll   = "dice_roll"
	actionFilter = "dice_filter"

	countIncrement = "inc"
	countDecrement = "dec"

	filterAll  = "all"
	filterMine = "mine"
)

// customID joins an action and its argument
func customID(action, argument string) string {
	if argument == "" {
		return action
	}
	return action + ":" + argument
}

// parseCustomID splits a component custom ID into action and argument
func parseCustomID(id string) (action, argument string) {
	action, argument, _ = strings.Cut(id, ":")
	return action, argument
}

// interactionUser returns the user ID and display name behind an interaction.
// Guild interactions carry a member, direct messages only a user.
func interactionUser(i *discordgo.InteractionCreate) (userID, userName string) {
	if i.Member != nil && i.Member.User != nil {
		userName = i.Member.User.Username
		if i.Member.Nick != "" {
			userName = i.Member.Nick
		}
		return i.Member.User.ID, userName
	}

	if i.User != nil {
		return i.User.ID, i.User.Username
	}

	return "", ""
}

// RespondWithError sends an ephemeral error response to an interaction
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errorMessage string) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Error",
		Description: errorMessage,
		Color:       colorError,
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// RespondWithPanel sends a new ephemeral panel
func RespondWithPanel(s *discordgo.Session, i *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embeds,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral, // Only the roller sees their panel
		},
	})
}

// EditPanel replaces the panel after a deferred response
func EditPanel(s *discordgo.Session, i *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}
