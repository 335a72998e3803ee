// Package view turns roll records into display-ready history entries.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/dicetray/internal/models"
)

// Placeholder texts shown instead of entries
const (
	PlaceholderEmpty         = "No rolls yet"
	PlaceholderLoadFailed    = "Failed to load history"
	PlaceholderLoading       = "Loading..."
	PlaceholderConnectFailed = "Failed to connect to database. Check your connection."
)

// NoticeSaveFailed is shown when a roll could not be stored
const NoticeSaveFailed = "Failed to save roll. Check your connection."

// compactThreshold is the most dice shown in full on the result display
const compactThreshold = 6

// Entry is one rendered history row
type Entry struct {
	RollID    string
	UserName  string
	DiceType  string
	Result    string
	Total     string
	Own       bool
	CreatedAt time.Time
}

// History is a rendered history list
type History struct {
	Entries []Entry

	// Placeholder replaces the list when set
	Placeholder string

	// ScrollTo is the index of the newest entry, -1 when there are none
	ScrollTo int
}

// Render builds entries for rolls, newest first, marking currentUserID's rolls
func Render(rolls []*models.Roll, currentUserID string) *History {
	if len(rolls) == 0 {
		return Placeholder(PlaceholderEmpty)
	}

	entries := make([]Entry, 0, len(rolls))
	for _, roll := range rolls {
		if roll == nil {
			continue
		}

		entry := Entry{
			RollID:    roll.ID,
			UserName:  models.DisplayName(roll.UserName),
			DiceType:  roll.DiceType,
			Own:       currentUserID != "" && roll.UserID == currentUserID,
			CreatedAt: roll.CreatedAt,
		}

		if roll.IsMultiDie() {
			entry.Result = joinResults(roll.Results)
			entry.Total = TotalLabel(roll.Total)
		} else if len(roll.Results) == 1 {
			entry.Result = strconv.Itoa(roll.Results[0])
		}

		entries = append(entries, entry)
	}

	return &History{
		Entries:  entries,
		ScrollTo: 0,
	}
}

// Placeholder returns a history showing only text
func Placeholder(text string) *History {
	return &History{
		Placeholder: text,
		ScrollTo:    -1,
	}
}

// TotalLabel formats the total shown for multi die rolls
func TotalLabel(total int) string {
	return fmt.Sprintf("Total: %d", total)
}

// FormatRollDisplay formats the big result display. Up to six dice are listed
// in full; more show the first and last three.
func FormatRollDisplay(results []int) string {
	if len(results) <= compactThreshold {
		return joinResults(results)
	}

	return joinResults(results[:3]) + "... " + joinResults(results[len(results)-3:])
}

// SelectionLabel is the die type label for the current selection, or a
// prompt when nothing is selected
func SelectionLabel(sides, count int) string {
	if sides == 0 {
		return "Select a dice to roll"
	}
	return models.DiceLabel(sides, count)
}

// WriteText renders history as plain text lines
func WriteText(w io.Writer, h *History) error {
	if h == nil {
		return nil
	}

	if h.Placeholder != "" {
		_, err := fmt.Fprintln(w, h.Placeholder)
		return err
	}

	for _, entry := range h.Entries {
		marker := " "
		if entry.Own {
			marker = "*"
		}

		line := fmt.Sprintf("%s %s  %s rolled %s: %s", marker,
			entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			entry.UserName, entry.DiceType, entry.Result)
		if entry.Total != "" {
			line += "  (" + entry.Total + ")"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func joinResults(results []int) string {
	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = strconv.Itoa(result)
	}
	return strings.Join(parts, ", ")
}
