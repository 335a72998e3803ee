package app

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
	"github.com/KirkDiggler/dicetray/internal/view"
)

// DefaultRollDelay is how long the rolling indicator shows before results
const DefaultRollDelay = 500 * time.Millisecond

// State is the controller's position in the roll cycle
type State int

const (
	// StateIdle means no die has been selected yet
	StateIdle State = iota

	// StateReady means a die is selected and a roll can start
	StateReady

	// StateRolling means a roll is in flight
	StateRolling
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateRolling:
		return "rolling"
	default:
		return "unknown"
	}
}

// Filter selects whose rolls the history shows
type Filter int

const (
	// FilterAll shows every user's rolls
	FilterAll Filter = iota

	// FilterMine shows only the current user's rolls
	FilterMine
)

// String returns the filter name
func (f Filter) String() string {
	if f == FilterMine {
		return "mine"
	}
	return "all"
}

// View receives everything the controller wants shown
type View interface {
	// RenderSelection shows the die type label and the current count
	RenderSelection(label string, count int)

	// RenderRolling shows the rolling indicator
	RenderRolling()

	// RenderResult shows a finished roll; total is empty for a single die
	RenderResult(display, total string)

	// RenderHistory replaces the history list
	RenderHistory(history *view.History)

	// Notice shows a transient message such as an error toast
	Notice(message string)
}

// Config holds configuration for a controller
type Config struct {
	// Service performs rolls and history reads
	Service roller.Service

	// Profile is this client's durable storage
	Profile profile.Store

	// View renders controller output
	View View

	// RollDelay is the pause before results are shown; zero disables it
	RollDelay time.Duration

	// Optional logger
	Logger *slog.Logger
}

// RollOutcome reports what happened to one roll
type RollOutcome struct {
	// Roll is the stored roll when Saved, otherwise the unsaved draw
	Roll *models.Roll

	// Saved is true when the roll reached the history store
	Saved bool

	// Err is the failure that stopped the roll, if any
	Err error
}
