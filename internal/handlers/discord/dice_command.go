package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiceCommand handles the /dice command, which opens a personal roll panel
type DiceCommand struct {
	BaseCommand
	sessions *sessionManager
}

// NewDiceCommand creates a new dice command handler
func NewDiceCommand(sessions *sessionManager) *DiceCommand {
	return &DiceCommand{
		BaseCommand: BaseCommand{
			Name:        "dice",
			Description: "Open your dice tray",
		},
		sessions: sessions,
	}
}

// Handle processes a Discord interaction for the dice command
func (c *DiceCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	if i.ApplicationCommandData().Name != c.Name {
		return nil
	}

	userID, userName := interactionUser(i)
	if userID == "" {
		return RespondWithError(s, i, "Could not tell who you are.")
	}

	session, err := c.sessions.get(context.Background(), userID, userName)
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Failed to open your dice tray: %v", err))
	}

	sides, _ := session.controller.Selection()
	embeds, components := session.view.panelMessage(sides, session.controller.Filter())

	return RespondWithPanel(s, i, embeds, components)
}
