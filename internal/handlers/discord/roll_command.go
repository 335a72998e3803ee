package discord

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/bwmarrin/discordgo"
)

// RollCommand handles the /roll command, which rolls once without a panel
type RollCommand struct {
	BaseCommand
	sessions *sessionManager
}

// NewRollCommand creates a new roll command handler
func NewRollCommand(sessions *sessionManager) *RollCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.StandardDice))
	for _, sides := range models.StandardDice {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("D%d", sides),
			Value: sides,
		})
	}

	minCount := float64(models.MinDiceCount)

	return &RollCommand{
		BaseCommand: BaseCommand{
			Name:        "roll",
			Description: "Roll dice and share the result",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "die",
					Description: "Which die to roll",
					Required:    true,
					Choices:     choices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many dice to roll",
					MinValue:    &minCount,
					MaxValue:    float64(models.MaxDiceCount),
				},
			},
		},
		sessions: sessions,
	}
}

// Handle processes a Discord interaction for the roll command
func (c *RollCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	sides, count := rollOptions(data.Options)

	userID, userName := interactionUser(i)
	if userID == "" {
		return RespondWithError(s, i, "Could not tell who you are.")
	}

	// Rolling waits for the indicator delay, so answer within Discord's deadline first
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return fmt.Errorf("failed to defer roll response: %w", err)
	}

	ctx := context.Background()
	session, err := c.sessions.get(ctx, userID, userName)
	if err != nil {
		return c.editError(s, i, fmt.Sprintf("Failed to open your dice tray: %v", err))
	}

	if err := session.controller.SelectDie(sides); err != nil {
		return c.editError(s, i, fmt.Sprintf("Unsupported die: D%d", sides))
	}
	session.controller.SetCount(count)

	outcome := session.controller.Roll(ctx)
	if outcome == nil {
		return c.editError(s, i, "You already have a roll in progress.")
	}
	if outcome.Roll == nil {
		return c.editError(s, i, "The dice fell off the table. Try again.")
	}

	embeds := []*discordgo.MessageEmbed{rollEmbed(userName, outcome)}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	return err
}

func (c *RollCommand) editError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) error {
	content := message
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// rollOptions reads die and count, defaulting count to one
func rollOptions(options []*discordgo.ApplicationCommandInteractionDataOption) (sides, count int) {
	count = models.MinDiceCount
	for _, option := range options {
		switch option.Name {
		case "die":
			sides = int(option.IntValue())
		case "count":
			count = models.ClampDiceCount(int(option.IntValue()))
		}
	}
	return sides, count
}
