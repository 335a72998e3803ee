package history

import (
	"errors"

	"github.com/KirkDiggler/dicetray/internal/models"
)

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrFeedClosed is returned when subscribing to a closed store
	ErrFeedClosed = errors.New("change feed closed")

	// ErrInvalidRoll is returned when a roll breaks a record invariant
	ErrInvalidRoll = models.ErrInvalidRoll
)

// RollHandler receives rolls from the change feed
type RollHandler func(roll *models.Roll)

// CreateUserInput contains parameters for creating a user
type CreateUserInput struct {
	// UserName is the display name; blank becomes models.DefaultUserName
	UserName string
}

// CreateUserOutput contains the created user
type CreateUserOutput struct {
	User *models.User
}

// UpdateUserNameInput contains parameters for renaming a user
type UpdateUserNameInput struct {
	UserID   string
	UserName string
}

// StoreRollInput contains the roll to persist. ID and CreatedAt are assigned
// by the store when empty.
type StoreRollInput struct {
	Roll *models.Roll
}

// StoreRollOutput contains the stored roll
type StoreRollOutput struct {
	Roll *models.Roll
}

// ListRollsInput contains parameters for reading history
type ListRollsInput struct {
	// UserID limits results to one user when set
	UserID string

	// Limit caps the number of rolls; zero or anything above
	// models.HistoryLimit means models.HistoryLimit
	Limit int
}

// ListRollsOutput contains history, newest first
type ListRollsOutput struct {
	Rolls []*models.Roll
}

// SubscribeInput contains the change feed callback
type SubscribeInput struct {
	OnInsert RollHandler
}

// effectiveLimit applies the history window to a requested limit
func effectiveLimit(limit int) int {
	if limit <= 0 || limit > models.HistoryLimit {
		return models.HistoryLimit
	}
	return limit
}
