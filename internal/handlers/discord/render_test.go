package discord

import (
	"testing"
	"time"

	"github.com/KirkDiggler/dicetray/internal/app"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/view"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttons(components []discordgo.MessageComponent) []discordgo.Button {
	var all []discordgo.Button
	for _, component := range components {
		row, ok := component.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if button, ok := inner.(discordgo.Button); ok {
				all = append(all, button)
			}
		}
	}
	return all
}

func findButton(t *testing.T, components []discordgo.MessageComponent, id string) discordgo.Button {
	t.Helper()
	for _, button := range buttons(components) {
		if button.CustomID == id {
			return button
		}
	}
	t.Fatalf("button %s not found", id)
	return discordgo.Button{}
}

func TestPanelComponentsLayout(t *testing.T) {
	components := panelComponents(0, 1, app.FilterAll)

	// Discord allows at most five rows of five buttons
	require.LessOrEqual(t, len(components), 5)
	for _, component := range components {
		row := component.(discordgo.ActionsRow)
		assert.LessOrEqual(t, len(row.Components), 5)
	}

	for _, sides := range models.StandardDice {
		button := findButton(t, components, customID(actionSelect, itoa(sides)))
		assert.Equal(t, discordgo.SecondaryButton, button.Style)
	}

	assert.True(t, findButton(t, components, actionRoll).Disabled)
	assert.True(t, findButton(t, components, customID(actionCount, countDecrement)).Disabled)
	assert.Equal(t, discordgo.PrimaryButton, findButton(t, components, customID(actionFilter, filterAll)).Style)
}

func TestPanelComponentsHighlightSelection(t *testing.T) {
	components := panelComponents(20, models.MaxDiceCount, app.FilterMine)

	assert.Equal(t, discordgo.SuccessButton, findButton(t, components, customID(actionSelect, "20")).Style)
	assert.False(t, findButton(t, components, actionRoll).Disabled)
	assert.True(t, findButton(t, components, customID(actionCount, countIncrement)).Disabled)
	assert.Equal(t, discordgo.PrimaryButton, findButton(t, components, customID(actionFilter, filterMine)).Style)
}

func TestPanelMessage(t *testing.T) {
	panel := newPanelView()
	panel.RenderSelection("3D6", 3)
	panel.RenderRolling()

	embeds, _ := panel.panelMessage(6, app.FilterAll)
	require.Len(t, embeds, 1)
	assert.Equal(t, "3D6", embeds[0].Title)
	assert.Contains(t, embeds[0].Description, "Rolling")

	panel.RenderResult("1, 4, 6", "Total: 11")
	roll := models.NewRoll("me", 6, []int{1, 4, 6})
	roll.UserName = "Gandalf"
	panel.RenderHistory(view.Render([]*models.Roll{roll}, "me"))
	panel.Notice(view.NoticeSaveFailed)

	embeds, _ = panel.panelMessage(6, app.FilterMine)
	embed := embeds[0]
	assert.Equal(t, "🎲 **1, 4, 6**\nTotal: 11", embed.Description)
	assert.Equal(t, colorError, embed.Color)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, view.NoticeSaveFailed, embed.Fields[0].Value)
	assert.Equal(t, "History (my rolls)", embed.Fields[1].Name)
	assert.Equal(t, "**Gandalf** rolled 3D6: 1, 4, 6 (Total: 11)", embed.Fields[1].Value)

	// Notices show once
	embeds, _ = panel.panelMessage(6, app.FilterMine)
	assert.Len(t, embeds[0].Fields, 1)
	assert.Equal(t, colorReady, embeds[0].Color)
}

func TestHistoryText(t *testing.T) {
	assert.Equal(t, view.PlaceholderEmpty, historyText(view.Render(nil, "")))

	var rolls []*models.Roll
	for i := 0; i < 12; i++ {
		roll := models.NewRoll("other", 20, []int{i + 1})
		roll.CreatedAt = time.Unix(1700000000, 0)
		rolls = append(rolls, roll)
	}

	text := historyText(view.Render(rolls, ""))
	assert.Contains(t, text, "Anonymous rolled D20: 1 <t:1700000000:R>")
	assert.Contains(t, text, "…and 2 more")
}

func TestRollEmbed(t *testing.T) {
	roll := models.NewRoll("me", 6, []int{1, 2, 3, 4, 5, 6, 6, 6})

	embed := rollEmbed("Sam", &app.RollOutcome{Roll: roll, Saved: true})
	assert.Equal(t, "Sam rolled 8D6", embed.Title)
	assert.Equal(t, "🎲 **1, 2, 3... 6, 6, 6**\nTotal: 33", embed.Description)
	assert.Nil(t, embed.Footer)

	embed = rollEmbed("", &app.RollOutcome{Roll: models.NewRoll("me", 20, []int{20})})
	assert.Equal(t, "Anonymous rolled D20", embed.Title)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, view.NoticeSaveFailed, embed.Footer.Text)
}

func TestAnnouncement(t *testing.T) {
	roll := models.NewRoll("me", 6, []int{2, 3})
	roll.UserName = "Pippin"
	assert.Equal(t, "🎲 Pippin rolled 2D6: 2, 3 (Total: 5)", announcement(roll))

	assert.Equal(t, "🎲 Anonymous rolled D100: 42", announcement(models.NewRoll("me", 100, []int{42})))
}
