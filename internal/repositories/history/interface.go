package history

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/dicetray/internal/repositories/history Repository,Subscription

import (
	"context"
)

// Repository defines the interface for roll history persistence. Remote
// drivers share their history between every client; the local driver keeps
// one profile's history on that profile.
type Repository interface {
	// CreateUser registers a roller and returns the store-issued ID
	CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error)

	// UpdateUserName changes a roller's display name
	UpdateUserName(ctx context.Context, input *UpdateUserNameInput) error

	// StoreRoll persists one roll record
	StoreRoll(ctx context.Context, input *StoreRollInput) (*StoreRollOutput, error)

	// ListRolls returns the newest rolls first, optionally for one user
	ListRolls(ctx context.Context, input *ListRollsInput) (*ListRollsOutput, error)

	// Subscribe delivers every roll stored after the call returns
	Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error)
}

// Subscription is a handle on a change feed registration
type Subscription interface {
	// Unsubscribe stops delivery; calling it more than once is safe
	Unsubscribe() error
}
