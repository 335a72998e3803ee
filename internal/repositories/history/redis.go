package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/dicetray/internal/common/clock"
	"github.com/KirkDiggler/dicetray/internal/common/uuid"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	userKeyPrefix      = "user:"
	rollKeyPrefix      = "roll:"
	allRollsKey        = "rolls:all"
	userRollsKeyPrefix = "rolls:user:"
	rollSequenceKey    = "rolls:seq"

	// RollsChannel is the pub/sub channel carrying inserted rolls
	RollsChannel = "rolls:inserted"
)

// RedisConfig holds configuration for the Redis history repository
type RedisConfig struct {
	// Redis client
	RedisClient *redis.Client

	// Optional clock; defaults to the system clock
	Clock clock.Clock

	// Optional ID generator; defaults to UUIDs
	UUIDGenerator uuid.UUID

	// Optional logger for change feed failures
	Logger *slog.Logger
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	clock  clock.Clock
	uuid   uuid.UUID
	logger *slog.Logger
}

// NewRedis creates a new Redis-backed history repository
func NewRedis(cfg *RedisConfig) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	repo := &redisRepository{
		client: cfg.RedisClient,
		clock:  cfg.Clock,
		uuid:   cfg.UUIDGenerator,
		logger: cfg.Logger,
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

	return repo, nil
}

// CreateUser stores a new user in Redis
func (r *redisRepository) CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	user := &models.User{
		ID:       r.uuid.NewUUID(),
		UserName: models.DisplayName(input.UserName),
	}

	if err := r.saveUser(ctx, user); err != nil {
		return nil, err
	}

	return &CreateUserOutput{
		User: user,
	}, nil
}

// UpdateUserName renames an existing user in Redis
func (r *redisRepository) UpdateUserName(ctx context.Context, input *UpdateUserNameInput) error {
	if input == nil || input.UserID == "" {
		return errors.New("input and user ID cannot be empty")
	}

	user, err := r.getUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	user.UserName = models.DisplayName(input.UserName)

	return r.saveUser(ctx, user)
}

// StoreRoll persists a roll, indexes it and publishes it on the change feed
func (r *redisRepository) StoreRoll(ctx context.Context, input *StoreRollInput) (*StoreRollOutput, error) {
	if input == nil || input.Roll == nil {
		return nil, errors.New("input and roll cannot be nil")
	}

	roll := input.Roll.Clone()
	if err := roll.Validate(); err != nil {
		return nil, err
	}

	// The user must exist, like a foreign key
	user, err := r.getUser(ctx, roll.UserID)
	if err != nil {
		return nil, err
	}

	if roll.ID == "" {
		roll.ID = r.uuid.NewUUID()
	}
	if roll.CreatedAt.IsZero() {
		roll.CreatedAt = r.clock.Now()
	}

	// Names are joined at read time, never stored on the roll
	roll.UserName = ""

	rollJSON, err := json.Marshal(roll)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal roll: %w", err)
	}

	// Indexes are scored by insertion sequence so rolls sharing a timestamp
	// still list newest first
	seq, err := r.client.Incr(ctx, rollSequenceKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate roll sequence: %w", err)
	}

	// Create a Redis transaction
	pipe := r.client.TxPipeline()

	rollKey := fmt.Sprintf("%s%s", rollKeyPrefix, roll.ID)
	pipe.Set(ctx, rollKey, rollJSON, 0) // No expiration; history is query-limited

	score := float64(seq)
	pipe.ZAdd(ctx, allRollsKey, redis.Z{
		Score:  score,
		Member: roll.ID,
	})
	pipe.ZAdd(ctx, fmt.Sprintf("%s%s", userRollsKeyPrefix, roll.UserID), redis.Z{
		Score:  score,
		Member: roll.ID,
	})

	// Execute the transaction
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store roll: %w", err)
	}

	// Announce the new row to every subscriber, joined with the name.
	// A failed announcement is only logged.
	roll.UserName = user.UserName
	r.publish(ctx, roll)

	return &StoreRollOutput{
		Roll: roll,
	}, nil
}

// ListRolls reads the newest rolls from Redis joined with user names
func (r *redisRepository) ListRolls(ctx context.Context, input *ListRollsInput) (*ListRollsOutput, error) {
	if input == nil {
		input = &ListRollsInput{}
	}

	indexKey := allRollsKey
	if input.UserID != "" {
		indexKey = fmt.Sprintf("%s%s", userRollsKeyPrefix, input.UserID)
	}

	limit := effectiveLimit(input.Limit)
	rollIDs, err := r.client.ZRevRange(ctx, indexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get roll IDs: %w", err)
	}

	// If there are no rolls, return an empty slice
	if len(rollIDs) == 0 {
		return &ListRollsOutput{
			Rolls: []*models.Roll{},
		}, nil
	}

	// Get all roll records using a pipeline
	pipe := r.client.Pipeline()
	rollCommands := make([]*redis.StringCmd, len(rollIDs))
	for i, rollID := range rollIDs {
		rollCommands[i] = pipe.Get(ctx, fmt.Sprintf("%s%s", rollKeyPrefix, rollID))
	}

	// Execute the pipeline; missing keys are handled per command
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get rolls: %w", err)
	}

	rolls := make([]*models.Roll, 0, len(rollIDs))
	userIDs := make(map[string]struct{})
	for i, cmd := range rollCommands {
		rollJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Index entry without a record; skip it
				continue
			}
			return nil, fmt.Errorf("failed to get roll %s: %w", rollIDs[i], err)
		}

		var roll models.Roll
		if err := json.Unmarshal([]byte(rollJSON), &roll); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roll %s: %w", rollIDs[i], err)
		}

		rolls = append(rolls, &roll)
		userIDs[roll.UserID] = struct{}{}
	}

	names, err := r.getUserNames(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, roll := range rolls {
		roll.UserName = models.DisplayName(names[roll.UserID])
	}

	return &ListRollsOutput{
		Rolls: rolls,
	}, nil
}

// Subscribe listens on the Redis rolls channel
func (r *redisRepository) Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil || input.OnInsert == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	pubsub := r.client.Subscribe(ctx, RollsChannel)

	// Wait for the subscription to be confirmed before returning
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to rolls: %w", err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
	}

	go sub.run(input.OnInsert)

	return sub, nil
}

// publish sends roll on the change feed, logging failures
func (r *redisRepository) publish(ctx context.Context, roll *models.Roll) {
	payload, err := json.Marshal(roll)
	if err != nil {
		r.logger.Error("failed to marshal roll for feed", "roll_id", roll.ID, "err", err)
		return
	}

	if err := r.client.Publish(ctx, RollsChannel, payload).Err(); err != nil {
		r.logger.Warn("failed to publish roll", "roll_id", roll.ID, "err", err)
	}
}

// getUser loads a user from Redis
func (r *redisRepository) getUser(ctx context.Context, userID string) (*models.User, error) {
	userJSON, err := r.client.Get(ctx, fmt.Sprintf("%s%s", userKeyPrefix, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

// saveUser writes a user to Redis
func (r *redisRepository) saveUser(ctx context.Context, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.client.Set(ctx, fmt.Sprintf("%s%s", userKeyPrefix, user.ID), userJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// getUserNames loads display names for a set of user IDs in one pipeline
func (r *redisRepository) getUserNames(ctx context.Context, userIDs map[string]struct{}) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	pipe := r.client.Pipeline()
	userCommands := make(map[string]*redis.StringCmd, len(userIDs))
	for userID := range userIDs {
		userCommands[userID] = pipe.Get(ctx, fmt.Sprintf("%s%s", userKeyPrefix, userID))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for userID, cmd := range userCommands {
		userJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
		}

		var user models.User
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user %s: %w", userID, err)
		}
		names[userID] = user.UserName
	}

	return names, nil
}

// redisSubscription forwards pub/sub messages to a callback
type redisSubscription struct {
	pubsub *redis.PubSub
	once   sync.Once
}

// run delivers messages until the pub/sub channel closes
func (s *redisSubscription) run(onInsert RollHandler) {
	for msg := range s.pubsub.Channel() {
		var roll models.Roll
		if err := json.Unmarshal([]byte(msg.Payload), &roll); err != nil {
			// Not a roll; ignore it
			continue
		}
		onInsert(&roll)
	}
}

// Unsubscribe closes the underlying pub/sub connection
func (s *redisSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}
