package roller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/dice"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
)

// service implements the Service interface
type service struct {
	repository history.Repository
	diceRoller dice.Roller
	logger     *slog.Logger
}

// New creates a new roller service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}

	if cfg.DiceRoller == nil {
		return nil, ErrNilDiceRoller
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		repository: cfg.Repository,
		diceRoller: cfg.DiceRoller,
		logger:     logger,
	}, nil
}

// EnsureUser returns the cached user ID or creates the user and caches its ID
func (s *service) EnsureUser(ctx context.Context, input *EnsureUserInput) (*EnsureUserOutput, error) {
	if input == nil || input.Profile == nil {
		return nil, ErrNilProfile
	}

	// Check the profile first
	userID, err := input.Profile.Get(profile.KeyUserID)
	if err == nil && userID != "" {
		return &EnsureUserOutput{
			UserID: userID,
		}, nil
	}
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return nil, fmt.Errorf("failed to read cached user ID: %w", err)
	}

	// Create the user in the store
	output, err := s.repository.CreateUser(ctx, &history.CreateUserInput{
		UserName: strings.TrimSpace(input.UserName),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserUnavailable, err)
	}

	// Cache the ID for the next roll
	if err := input.Profile.Set(profile.KeyUserID, output.User.ID); err != nil {
		s.logger.Warn("failed to cache user ID", "user_id", output.User.ID, "err", err)
	}

	s.logger.Debug("created user", "user_id", output.User.ID, "user_name", output.User.UserName)

	return &EnsureUserOutput{
		UserID:  output.User.ID,
		Created: true,
	}, nil
}

// RenameUser updates the user's display name in the store
func (s *service) RenameUser(ctx context.Context, input *RenameUserInput) (*RenameUserOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, ErrMissingUserID
	}

	err := s.repository.UpdateUserName(ctx, &history.UpdateUserNameInput{
		UserID:   input.UserID,
		UserName: strings.TrimSpace(input.UserName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rename user: %w", err)
	}

	return &RenameUserOutput{}, nil
}

// RollDice draws count dice of the given sides
func (s *service) RollDice(_ context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil || !models.IsStandardDie(input.Sides) {
		return nil, ErrUnsupportedDie
	}

	count := models.ClampDiceCount(input.Count)

	// A single die goes through Roll so one and many dice share one record shape
	var results []int
	if count == 1 {
		results = []int{s.diceRoller.Roll(input.Sides)}
	} else {
		results = s.diceRoller.RollMany(input.Sides, count).Results
	}

	return &RollDiceOutput{
		Roll: models.NewRoll("", input.Sides, results),
	}, nil
}

// SaveRoll stores a roll for the user
func (s *service) SaveRoll(ctx context.Context, input *SaveRollInput) (*SaveRollOutput, error) {
	if input == nil || input.Roll == nil {
		return nil, ErrNilRoll
	}

	if input.UserID == "" {
		return nil, ErrMissingUserID
	}

	roll := input.Roll.Clone()
	roll.UserID = input.UserID

	output, err := s.repository.StoreRoll(ctx, &history.StoreRollInput{
		Roll: roll,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save roll: %w", err)
	}

	return &SaveRollOutput{
		Roll: output.Roll,
	}, nil
}

// GetHistory reads the history window from the store
func (s *service) GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	if input == nil {
		input = &GetHistoryInput{}
	}

	output, err := s.repository.ListRolls(ctx, &history.ListRollsInput{
		UserID: input.UserID,
		Limit:  models.HistoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return &GetHistoryOutput{
		Rolls: output.Rolls,
	}, nil
}

// WatchRolls subscribes to the store's change feed
func (s *service) WatchRolls(ctx context.Context, input *WatchRollsInput) (*WatchRollsOutput, error) {
	if input == nil || input.OnRoll == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	sub, err := s.repository.Subscribe(ctx, &history.SubscribeInput{
		OnInsert: input.OnRoll,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to rolls: %w", err)
	}

	return &WatchRollsOutput{
		Subscription: sub,
	}, nil
}
