package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/dicetray/internal/common/clock"
	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/common/uuid"
	"github.com/KirkDiggler/dicetray/internal/models"
)

// LocalConfig holds configuration for the profile-backed history repository
type LocalConfig struct {
	// Profile is the durable storage for history, name and user ID
	Profile profile.Store

	// Optional clock; defaults to the system clock
	Clock clock.Clock

	// Optional ID generator; defaults to UUIDs
	UUIDGenerator uuid.UUID

	// Optional logger for discarded history
	Logger *slog.Logger

	// Capacity of the ring; defaults to models.HistoryLimit
	Capacity int
}

// localRepository keeps one profile's history in a bounded newest-first ring
// and persists it as JSON in the profile after every roll
type localRepository struct {
	mu       sync.Mutex
	profile  profile.Store
	clock    clock.Clock
	uuid     uuid.UUID
	logger   *slog.Logger
	capacity int
	feed     *feed

	history  []*models.Roll
	userID   string
	userName string
}

// NewLocal creates a local repository and loads any saved history
func NewLocal(cfg *LocalConfig) (*localRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Profile == nil {
		return nil, errors.New("profile store cannot be nil")
	}

	repo := &localRepository{
		profile:  cfg.Profile,
		clock:    cfg.Clock,
		uuid:     cfg.UUIDGenerator,
		logger:   cfg.Logger,
		capacity: cfg.Capacity,
		feed:     newFeed(0),
	}
	if repo.clock == nil {
		repo.clock = clock.New()
	}
	if repo.uuid == nil {
		repo.uuid = uuid.New()
	}
	if repo.logger == nil {
		repo.logger = slog.Default()
	}
	if repo.capacity <= 0 {
		repo.capacity = models.HistoryLimit
	}

	if err := repo.Load(); err != nil {
		return nil, err
	}

	return repo, nil
}

// Load reads history, user ID and name from the profile. Unreadable history
// is discarded.
func (r *localRepository) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = []*models.Roll{}

	if userID, err := r.profile.Get(profile.KeyUserID); err == nil {
		r.userID = userID
	} else if !errors.Is(err, profile.ErrNotFound) {
		return fmt.Errorf("failed to load user ID: %w", err)
	}

	if userName, err := r.profile.Get(profile.KeyUserName); err == nil {
		r.userName = userName
	} else if !errors.Is(err, profile.ErrNotFound) {
		return fmt.Errorf("failed to load user name: %w", err)
	}

	raw, err := r.profile.Get(profile.KeyRollHistory)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load history: %w", err)
	}

	var saved []*models.Roll
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		r.logger.Warn("discarding unreadable roll history", "err", err)
		return nil
	}

	for _, roll := range saved {
		if roll == nil {
			continue
		}
		r.history = append(r.history, roll)
	}
	if len(r.history) > r.capacity {
		r.history = r.history[:r.capacity]
	}

	return nil
}

// Append puts roll at the front of the ring and evicts the oldest entries
// past capacity
func (r *localRepository) Append(roll *models.Roll) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = r.appendLocked(roll)
}

// Persist writes history, user name and user ID to the profile
func (r *localRepository) Persist() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.persistLocked(r.history)
}

// CreateUser issues the profile's user ID once and returns it on every call
func (r *localRepository) CreateUser(_ context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if input.UserName != "" {
		r.userName = input.UserName
	}

	if r.userID == "" {
		userID := r.uuid.NewUUID()
		if err := r.profile.SetMany(map[string]string{
			profile.KeyUserID:   userID,
			profile.KeyUserName: r.userName,
		}); err != nil {
			return nil, fmt.Errorf("failed to save user: %w", err)
		}
		r.userID = userID
	}

	return &CreateUserOutput{
		User: &models.User{
			ID:       r.userID,
			UserName: models.DisplayName(r.userName),
		},
	}, nil
}

// UpdateUserName saves a new name for the profile's user
func (r *localRepository) UpdateUserName(_ context.Context, input *UpdateUserNameInput) error {
	if input == nil || input.UserID == "" {
		return errors.New("input and user ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if input.UserID != r.userID {
		return ErrUserNotFound
	}

	if err := r.profile.Set(profile.KeyUserName, input.UserName); err != nil {
		return fmt.Errorf("failed to save user name: %w", err)
	}
	r.userName = input.UserName

	return nil
}

// StoreRoll appends a roll to the ring, persists and publishes it
func (r *localRepository) StoreRoll(_ context.Context, input *StoreRollInput) (*StoreRollOutput, error) {
	if input == nil || input.Roll == nil {
		return nil, errors.New("input and roll cannot be nil")
	}

	roll := input.Roll.Clone()
	if err := roll.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if roll.ID == "" {
		roll.ID = r.uuid.NewUUID()
	}
	if roll.CreatedAt.IsZero() {
		roll.CreatedAt = r.clock.Now()
	}
	if roll.UserID == r.userID {
		roll.UserName = models.DisplayName(r.userName)
	} else {
		roll.UserName = models.DisplayName(roll.UserName)
	}

	next := r.appendLocked(roll)
	if err := r.persistLocked(next); err != nil {
		return nil, err
	}
	r.history = next

	r.feed.Publish(roll)

	return &StoreRollOutput{
		Roll: roll.Clone(),
	}, nil
}

// ListRolls returns the ring newest first, optionally for one user
func (r *localRepository) ListRolls(_ context.Context, input *ListRollsInput) (*ListRollsOutput, error) {
	if input == nil {
		input = &ListRollsInput{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	limit := effectiveLimit(input.Limit)
	rolls := make([]*models.Roll, 0, len(r.history))
	for _, roll := range r.history {
		if input.UserID != "" && roll.UserID != input.UserID {
			continue
		}
		rolls = append(rolls, roll.Clone())
		if len(rolls) == limit {
			break
		}
	}

	return &ListRollsOutput{
		Rolls: rolls,
	}, nil
}

// Subscribe registers a callback on the in-process change feed
func (r *localRepository) Subscribe(_ context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil || input.OnInsert == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	sub, err := r.feed.Subscribe(input.OnInsert)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Close stops the change feed
func (r *localRepository) Close() error {
	r.feed.Close()
	return nil
}

// appendLocked returns a new ring with roll in front; callers hold mu
func (r *localRepository) appendLocked(roll *models.Roll) []*models.Roll {
	next := make([]*models.Roll, 0, len(r.history)+1)
	next = append(next, roll)
	next = append(next, r.history...)
	if len(next) > r.capacity {
		next = next[:r.capacity]
	}
	return next
}

// persistLocked writes history and identity in one profile write; callers hold mu
func (r *localRepository) persistLocked(history []*models.Roll) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	values := map[string]string{
		profile.KeyRollHistory: string(raw),
		profile.KeyUserName:    r.userName,
	}
	if r.userID != "" {
		values[profile.KeyUserID] = r.userID
	}

	if err := r.profile.SetMany(values); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}

	return nil
}
