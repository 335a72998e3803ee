package discord

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/KirkDiggler/dicetray/internal/app"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/view"
	"github.com/bwmarrin/discordgo"
)

const (
	colorReady   = 0x00ff00 // Green color
	colorRolling = 0xffa500 // Orange color
	colorError   = 0xff0000 // Red color

	// historyLines is how many history entries fit in the panel
	historyLines = 10
)

// countPresets are the quick count buttons
var countPresets = []int{1, 5, 10}

// panelView implements app.View by keeping the latest state for the next
// message edit
type panelView struct {
	mu      sync.Mutex
	label   string
	count   int
	rolling bool
	result  string
	total   string
	history *view.History
	notice  string
}

func newPanelView() *panelView {
	return &panelView{
		label:   view.SelectionLabel(0, models.MinDiceCount),
		count:   models.MinDiceCount,
		history: view.Placeholder(view.PlaceholderLoading),
	}
}

// RenderSelection records the die label and count
func (v *panelView) RenderSelection(label string, count int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
	v.count = count
}

// RenderRolling marks a roll in flight
func (v *panelView) RenderRolling() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rolling = true
	v.result = ""
	v.total = ""
}

// RenderResult records the finished roll
func (v *panelView) RenderResult(display, total string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rolling = false
	v.result = display
	v.total = total
}

// RenderHistory records the history list
func (v *panelView) RenderHistory(history *view.History) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = history
}

// Notice records a message shown once on the next render
func (v *panelView) Notice(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = message
}

// panelMessage builds the embed and buttons for the panel and clears any notice
func (v *panelView) panelMessage(sides int, filter app.Filter) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	embed := &discordgo.MessageEmbed{
		Title: v.label,
		Color: colorReady,
	}

	switch {
	case v.rolling:
		embed.Description = "🎲 Rolling..."
		embed.Color = colorRolling
	case v.result != "":
		embed.Description = fmt.Sprintf("🎲 **%s**", v.result)
		if v.total != "" {
			embed.Description += "\n" + v.total
		}
	default:
		embed.Description = "Pick a die, set the count and roll."
	}

	if v.notice != "" {
		embed.Color = colorError
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "⚠️ Error",
			Value: v.notice,
		})
		v.notice = ""
	}

	historyTitle := "History (all rolls)"
	if filter == app.FilterMine {
		historyTitle = "History (my rolls)"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  historyTitle,
		Value: historyText(v.history),
	})

	return []*discordgo.MessageEmbed{embed}, panelComponents(sides, v.count, filter)
}

// historyText renders history entries for an embed field
func historyText(h *view.History) string {
	if h == nil {
		return view.PlaceholderLoading
	}
	if h.Placeholder != "" {
		return h.Placeholder
	}

	var lines []string
	for i, entry := range h.Entries {
		if i == historyLines {
			lines = append(lines, fmt.Sprintf("…and %d more", len(h.Entries)-historyLines))
			break
		}
		lines = append(lines, entryLine(entry))
	}

	return strings.Join(lines, "\n")
}

func entryLine(entry view.Entry) string {
	name := entry.UserName
	if entry.Own {
		name = "**" + name + "**"
	}

	line := fmt.Sprintf("%s rolled %s: %s", name, entry.DiceType, entry.Result)
	if entry.Total != "" {
		line += " (" + entry.Total + ")"
	}
	if !entry.CreatedAt.IsZero() {
		line += fmt.Sprintf(" <t:%d:R>", entry.CreatedAt.Unix())
	}
	return line
}

// panelComponents builds the button rows; the selected die and filter are highlighted
func panelComponents(sides, count int, filter app.Filter) []discordgo.MessageComponent {
	var dieRows [][]discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, die := range models.StandardDice {
		style := discordgo.SecondaryButton
		if die == sides {
			style = discordgo.SuccessButton
		}
		row = append(row, discordgo.Button{
			Label:    fmt.Sprintf("D%d", die),
			Style:    style,
			CustomID: customID(actionSelect, strconv.Itoa(die)),
		})
		if len(row) == 5 {
			dieRows = append(dieRows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		dieRows = append(dieRows, row)
	}

	countRow := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "−",
			Style:    discordgo.SecondaryButton,
			CustomID: customID(actionCount, countDecrement),
			Disabled: count <= models.MinDiceCount,
		},
		discordgo.Button{
			Label:    "+",
			Style:    discordgo.SecondaryButton,
			CustomID: customID(actionCount, countIncrement),
			Disabled: count >= models.MaxDiceCount,
		},
	}
	for _, preset := range countPresets {
		style := discordgo.SecondaryButton
		if preset == count {
			style = discordgo.SuccessButton
		}
		countRow = append(countRow, discordgo.Button{
			Label:    fmt.Sprintf("×%d", preset),
			Style:    style,
			CustomID: customID(actionCount, strconv.Itoa(preset)),
		})
	}
	allStyle, mineStyle := discordgo.PrimaryButton, discordgo.SecondaryButton
	if filter == app.FilterMine {
		allStyle, mineStyle = discordgo.SecondaryButton, discordgo.PrimaryButton
	}

	actionRow := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Roll",
			Style:    discordgo.DangerButton,
			CustomID: customID(actionRoll, ""),
			Disabled: sides == 0,
			Emoji: &discordgo.ComponentEmoji{
				Name: "🎲",
			},
		},
		discordgo.Button{
			Label:    "Show all",
			Style:    allStyle,
			CustomID: customID(actionFilter, filterAll),
		},
		discordgo.Button{
			Label:    "Show mine",
			Style:    mineStyle,
			CustomID: customID(actionFilter, filterMine),
		},
	}

	var components []discordgo.MessageComponent
	for _, dieRow := range dieRows {
		components = append(components, discordgo.ActionsRow{Components: dieRow})
	}
	components = append(components,
		discordgo.ActionsRow{Components: countRow},
		discordgo.ActionsRow{Components: actionRow},
	)

	return components
}

// rollEmbed renders a finished /roll for the channel
func rollEmbed(userName string, outcome *app.RollOutcome) *discordgo.MessageEmbed {
	roll := outcome.Roll

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s rolled %s", models.DisplayName(userName), roll.DiceType),
		Description: fmt.Sprintf("🎲 **%s**", view.FormatRollDisplay(roll.Results)),
		Color:       colorReady,
	}
	if roll.IsMultiDie() {
		embed.Description += "\n" + view.TotalLabel(roll.Total)
	}
	if !outcome.Saved {
		embed.Color = colorError
		embed.Footer = &discordgo.MessageEmbedFooter{Text: view.NoticeSaveFailed}
	}

	return embed
}

// announcement is the feed channel line for a stored roll
func announcement(roll *models.Roll) string {
	line := fmt.Sprintf("🎲 %s rolled %s: %s", models.DisplayName(roll.UserName), roll.DiceType, view.FormatRollDisplay(roll.Results))
	if roll.IsMultiDie() {
		line += " (" + view.TotalLabel(roll.Total) + ")"
	}
	return line
}
