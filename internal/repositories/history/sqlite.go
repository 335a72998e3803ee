package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/dicetray/internal/common/clock"
	"github.com/KirkDiggler/dicetray/internal/common/uuid"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history/migrations"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// SQLiteConfig holds configuration for the SQLite history repository
type SQLiteConfig struct {
	// DSN passed to the sqlite driver, e.g. "file:dicetray.db"
	DSN string

	// Optional clock; defaults to the system clock
	Clock clock.Clock

	// Optional ID generator; defaults to ULIDs
	UUIDGenerator uuid.UUID

	// FeedBuffer is how many rolls a slow subscriber may lag behind
	FeedBuffer int
}

// sqliteRepository implements the Repository interface on a relational
// users/rolls schema
type sqliteRepository struct {
	db    *sql.DB
	clock clock.Clock
	uuid  uuid.UUID
	feed  *feed

	// writeMu keeps insert and publish in the same order
	writeMu sync.Mutex
}

// NewSQLite opens the database, applies migrations and returns the repository
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DSN == "" {
		return nil, errors.New("sqlite DSN cannot be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// One connection keeps PRAGMAs and in-memory databases consistent
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	repo := &sqliteRepository{
		db:    db,
		clock: cfg.Clock,
		uuid:  cfg.UUIDGenerator,
		feed:  newFeed(cfg.FeedBuffer),
	}
	if repo.clock == nil {
		repo.clock = clock.New()
	}
	if repo.uuid == nil {
		repo.uuid = uuid.NewULID()
	}

	return repo, nil
}

// applyMigrations brings the schema up to date from the embedded files
func applyMigrations(db *sql.DB) error {
	// 1. Create the SQLite migration driver
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	// 2. Create the iofs (embedded filesystem) source driver
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	// 3. Create the migrate instance to run migrations
	instance, err := migrate.NewWithInstance("iofs", source, "", driver)
	if err != nil {
		return err
	}

	// 4. Apply all up migrations
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Close stops the change feed and closes the database
func (r *sqliteRepository) Close() error {
	r.feed.Close()
	return r.db.Close()
}

// CreateUser inserts a new user row
func (r *sqliteRepository) CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	user := &models.User{
		ID:       r.uuid.NewUUID(),
		UserName: models.DisplayName(input.UserName),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, user_name) VALUES (?, ?)`,
		user.ID, user.UserName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &CreateUserOutput{
		User: user,
	}, nil
}

// UpdateUserName renames an existing user row
func (r *sqliteRepository) UpdateUserName(ctx context.Context, input *UpdateUserNameInput) error {
	if input == nil || input.UserID == "" {
		return errors.New("input and user ID cannot be empty")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET user_name = ? WHERE id = ?`,
		models.DisplayName(input.UserName), input.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// StoreRoll inserts a roll row and publishes it on the change feed
func (r *sqliteRepository) StoreRoll(ctx context.Context, input *StoreRollInput) (*StoreRollOutput, error) {
	if input == nil || input.Roll == nil {
		return nil, errors.New("input and roll cannot be nil")
	}

	roll := input.Roll.Clone()
	if err := roll.Validate(); err != nil {
		return nil, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var userName string
	err := r.db.QueryRowContext(ctx, `SELECT user_name FROM users WHERE id = ?`, roll.UserID).Scan(&userName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if roll.ID == "" {
		roll.ID = r.uuid.NewUUID()
	}
	if roll.CreatedAt.IsZero() {
		roll.CreatedAt = r.clock.Now()
	}

	results, err := json.Marshal(roll.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rolls (id, user_id, dice_type, dice_count, results, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		roll.ID, roll.UserID, roll.DiceType, roll.DiceCount, string(results), roll.Total,
		roll.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store roll: %w", err)
	}

	roll.UserName = userName
	r.feed.Publish(roll)

	return &StoreRollOutput{
		Roll: roll,
	}, nil
}

// ListRolls reads the newest rolls joined with their user names
func (r *sqliteRepository) ListRolls(ctx context.Context, input *ListRollsInput) (*ListRollsOutput, error) {
	if input == nil {
		input = &ListRollsInput{}
	}

	query := `SELECT r.id, r.user_id, COALESCE(u.user_name, 'Anonymous'), r.dice_type,
		r.dice_count, r.results, r.total, r.created_at
		FROM rolls r
		LEFT JOIN users u ON u.id = r.user_id`
	args := []any{}

	if input.UserID != "" {
		query += ` WHERE r.user_id = ?`
		args = append(args, input.UserID)
	}

	query += ` ORDER BY r.created_at DESC, r.id DESC LIMIT ?`
	args = append(args, effectiveLimit(input.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rolls: %w", err)
	}
	defer rows.Close()

	rolls := []*models.Roll{}
	for rows.Next() {
		var (
			roll      models.Roll
			results   string
			createdAt int64
		)

		if err := rows.Scan(&roll.ID, &roll.UserID, &roll.UserName, &roll.DiceType,
			&roll.DiceCount, &results, &roll.Total, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}

		if err := json.Unmarshal([]byte(results), &roll.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results for roll %s: %w", roll.ID, err)
		}
		roll.UserName = models.DisplayName(roll.UserName)
		roll.CreatedAt = time.Unix(0, createdAt).UTC()

		rolls = append(rolls, &roll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rolls: %w", err)
	}

	return &ListRollsOutput{
		Rolls: rolls,
	}, nil
}

// Subscribe registers a callback on the in-process change feed
func (r *sqliteRepository) Subscribe(_ context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil || input.OnInsert == nil {
		return nil, errors.New("input and callback cannot be nil")
	}

	sub, err := r.feed.Subscribe(input.OnInsert)
	if err != nil {
		return nil, err
	}

	return sub, nil
}
