package roller

import (
	"log/slog"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/dice"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
)

// Config holds configuration for the roller service
type Config struct {
	// Repository dependencies
	Repository history.Repository

	// Service dependencies
	DiceRoller dice.Roller

	// Optional logger
	Logger *slog.Logger
}

// EnsureUserInput contains parameters for resolving the profile's user
type EnsureUserInput struct {
	// Profile holds the cached user ID for one client
	Profile profile.Store

	// UserName is used when the user has to be created
	UserName string
}

// EnsureUserOutput contains the resolved user
type EnsureUserOutput struct {
	UserID string

	// Created is true when the user was created by this call
	Created bool
}

// RenameUserInput contains parameters for renaming a user
type RenameUserInput struct {
	UserID   string
	UserName string
}

// RenameUserOutput is returned after a rename
type RenameUserOutput struct{}

// RollDiceInput contains parameters for a roll
type RollDiceInput struct {
	// Sides of the die, one of models.StandardDice
	Sides int

	// Count of dice; clamped to [models.MinDiceCount, models.MaxDiceCount]
	Count int
}

// RollDiceOutput contains the unsaved roll
type RollDiceOutput struct {
	// Roll has no ID, user or timestamp yet
	Roll *models.Roll
}

// SaveRollInput contains the roll to store
type SaveRollInput struct {
	UserID string
	Roll   *models.Roll
}

// SaveRollOutput contains the stored roll
type SaveRollOutput struct {
	Roll *models.Roll
}

// GetHistoryInput contains parameters for reading history
type GetHistoryInput struct {
	// UserID limits history to one user when set
	UserID string
}

// GetHistoryOutput contains rolls, newest first
type GetHistoryOutput struct {
	Rolls []*models.Roll
}

// WatchRollsInput contains the callback for new rolls
type WatchRollsInput struct {
	OnRoll history.RollHandler
}

// WatchRollsOutput contains the subscription to release when done
type WatchRollsOutput struct {
	Subscription history.Subscription
}
