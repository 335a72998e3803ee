package roller

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/dicetray/internal/services/roller Service

import "context"

// Service defines the roll operations shared by every front-end
type Service interface {
	// EnsureUser returns the profile's cached user ID, creating the user on first use
	EnsureUser(ctx context.Context, input *EnsureUserInput) (*EnsureUserOutput, error)

	// RenameUser changes the display name of an existing user
	RenameUser(ctx context.Context, input *RenameUserInput) (*RenameUserOutput, error)

	// RollDice draws dice for a die type; nothing is stored
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)

	// SaveRoll persists a roll for a user
	SaveRoll(ctx context.Context, input *SaveRollInput) (*SaveRollOutput, error)

	// GetHistory returns the newest rolls, optionally only one user's
	GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error)

	// WatchRolls registers a callback for every roll stored from now on
	WatchRolls(ctx context.Context, input *WatchRollsInput) (*WatchRollsOutput, error)
}
