// Package app holds the roll controller shared by every front-end.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
	"github.com/KirkDiggler/dicetray/internal/view"
)

// Controller owns one client's roll session: die selection, the roll cycle,
// the user identity and the visible history. Its lock is never held while
// calling the service.
type Controller struct {
	service   roller.Service
	profile   profile.Store
	view      View
	rollDelay time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	state    State
	sides    int
	count    int
	filter   Filter
	userID   string
	userName string
	rolls    []*models.Roll

	// reloadMu serializes history reloads
	reloadMu sync.Mutex

	sub     history.Subscription
	feedCtx context.Context
	cancel  context.CancelFunc
}

// New creates an idle controller
func New(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Service == nil {
		return nil, ErrNilService
	}

	if cfg.Profile == nil {
		return nil, ErrNilProfile
	}

	if cfg.View == nil {
		return nil, ErrNilView
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		service:   cfg.Service,
		profile:   cfg.Profile,
		view:      cfg.View,
		rollDelay: cfg.RollDelay,
		logger:    logger,
		state:     StateIdle,
		count:     models.MinDiceCount,
		filter:    FilterAll,
		feedCtx:   context.Background(),
	}, nil
}

// Start restores the profile, subscribes to new rolls and loads history
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if name, err := c.profile.Get(profile.KeyUserName); err == nil {
		c.userName = name
	}
	if userID, err := c.profile.Get(profile.KeyUserID); err == nil {
		c.userID = userID
	}
	c.feedCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Unlock()

	c.renderSelection()
	c.view.RenderHistory(view.Placeholder(view.PlaceholderLoading))

	output, err := c.service.WatchRolls(ctx, &roller.WatchRollsInput{
		OnRoll: c.handleInsert,
	})
	if err != nil {
		c.logger.Error("failed to subscribe to rolls", "err", err)
		c.view.RenderHistory(view.Placeholder(view.PlaceholderConnectFailed))
		return err
	}

	c.mu.Lock()
	c.sub = output.Subscription
	c.mu.Unlock()

	return c.Reload(ctx)
}

// Stop releases the feed subscription
func (c *Controller) Stop() error {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if sub == nil {
		return nil
	}
	return sub.Unsubscribe()
}

// SelectDie chooses the die to roll and makes the controller ready
func (c *Controller) SelectDie(sides int) error {
	if !models.IsStandardDie(sides) {
		return ErrUnsupportedDie
	}

	c.mu.Lock()
	c.sides = sides
	if c.state == StateIdle {
		c.state = StateReady
	}
	c.mu.Unlock()

	c.renderSelection()
	return nil
}

// SetCount sets how many dice to roll, clamped to the allowed range
func (c *Controller) SetCount(count int) {
	c.mu.Lock()
	c.count = models.ClampDiceCount(count)
	c.mu.Unlock()

	c.renderSelection()
}

// SetCountText sets the count from typed input; anything unreadable is 1
func (c *Controller) SetCountText(input string) {
	c.SetCount(models.ParseDiceCount(input))
}

// IncrementCount adds one die
func (c *Controller) IncrementCount() {
	c.mu.Lock()
	count := c.count + 1
	c.mu.Unlock()

	c.SetCount(count)
}

// DecrementCount removes one die
func (c *Controller) DecrementCount() {
	c.mu.Lock()
	count := c.count - 1
	c.mu.Unlock()

	c.SetCount(count)
}

// SetName saves the display name and renames the stored user if one exists.
// Rename failures are only logged.
func (c *Controller) SetName(ctx context.Context, name string) {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	c.userName = name
	userID := c.userID
	c.mu.Unlock()

	if err := c.profile.Set(profile.KeyUserName, name); err != nil {
		c.logger.Warn("failed to save user name", "err", err)
	}

	if userID == "" {
		return
	}

	_, err := c.service.RenameUser(ctx, &roller.RenameUserInput{
		UserID:   userID,
		UserName: name,
	})
	if err != nil {
		c.logger.Warn("failed to rename user", "user_id", userID, "err", err)
	}
}

// Roll runs one roll cycle. It returns nil without doing anything unless the
// controller is ready, and always leaves the controller ready afterwards.
func (c *Controller) Roll(ctx context.Context) *RollOutcome {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return nil
	}
	c.state = StateRolling
	sides, count, userName := c.sides, c.count, c.userName
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateReady
		c.mu.Unlock()
	}()

	logger := c.logger.With("dice_type", models.DiceLabel(sides, count))

	c.view.RenderRolling()

	// Hold the rolling indicator
	if c.rollDelay > 0 {
		timer := time.NewTimer(c.rollDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.renderSelection()
			return &RollOutcome{Err: ctx.Err()}
		}
	}

	rolled, err := c.service.RollDice(ctx, &roller.RollDiceInput{
		Sides: sides,
		Count: count,
	})
	if err != nil {
		logger.Error("failed to roll dice", "err", err)
		return &RollOutcome{Err: err}
	}

	roll := rolled.Roll
	total := ""
	if roll.IsMultiDie() {
		total = view.TotalLabel(roll.Total)
	}
	c.view.RenderResult(view.FormatRollDisplay(roll.Results), total)

	// Get or create the user
	user, err := c.service.EnsureUser(ctx, &roller.EnsureUserInput{
		Profile:  c.profile,
		UserName: userName,
	})
	if err != nil {
		logger.Error("failed to get user for roll", "err", err)
		c.view.Notice(view.NoticeSaveFailed)
		return &RollOutcome{Roll: roll, Err: err}
	}

	c.mu.Lock()
	c.userID = user.UserID
	c.mu.Unlock()

	// Save the roll
	saved, err := c.service.SaveRoll(ctx, &roller.SaveRollInput{
		UserID: user.UserID,
		Roll:   roll,
	})
	if err != nil {
		logger.Error("failed to save roll", "user_id", user.UserID, "err", err)
		c.view.Notice(view.NoticeSaveFailed)
		return &RollOutcome{Roll: roll, Err: err}
	}

	logger.Debug("roll saved", "roll_id", saved.Roll.ID, "total", saved.Roll.Total)

	// Refresh now rather than waiting for the feed
	if err := c.Reload(ctx); err != nil {
		logger.Warn("failed to reload history after roll", "err", err)
	}

	return &RollOutcome{
		Roll:  saved.Roll,
		Saved: true,
	}
}

// SetFilter switches between all rolls and the user's own and reloads
func (c *Controller) SetFilter(ctx context.Context, filter Filter) error {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()

	return c.Reload(ctx)
}

// Reload fetches the history window and renders it
func (c *Controller) Reload(ctx context.Context) error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	c.mu.Lock()
	filter, userID := c.filter, c.userID
	c.mu.Unlock()

	// Without a user yet, "mine" falls back to everyone's rolls
	input := &roller.GetHistoryInput{}
	if filter == FilterMine && userID != "" {
		input.UserID = userID
	}

	output, err := c.service.GetHistory(ctx, input)
	if err != nil {
		c.logger.Error("failed to load history", "filter", filter.String(), "err", err)
		c.view.RenderHistory(view.Placeholder(view.PlaceholderLoadFailed))
		return err
	}
	rolls := output.Rolls

	c.mu.Lock()
	c.rolls = rolls
	c.mu.Unlock()

	c.view.RenderHistory(view.Render(rolls, userID))
	return nil
}

// handleInsert reacts to a roll from the change feed
func (c *Controller) handleInsert(roll *models.Roll) {
	if roll == nil {
		return
	}

	c.mu.Lock()
	for _, known := range c.rolls {
		if known.ID == roll.ID {
			c.mu.Unlock()
			return
		}
	}
	if c.filter == FilterMine && roll.UserID != c.userID {
		c.mu.Unlock()
		return
	}
	ctx := c.feedCtx
	c.mu.Unlock()

	if err := c.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("failed to reload history from feed", "roll_id", roll.ID, "err", err)
	}
}

// State returns the current roll cycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the selected sides (0 when none) and count
func (c *Controller) Selection() (sides, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sides, c.count
}

// Filter returns the active history filter
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// UserID returns the cached user ID, empty before the first roll
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// UserName returns the saved display name
func (c *Controller) UserName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userName
}

// History returns a copy of the rolls last rendered
func (c *Controller) History() []*models.Roll {
	c.mu.Lock()
	defer c.mu.Unlock()

	rolls := make([]*models.Roll, len(c.rolls))
	for i, roll := range c.rolls {
		rolls[i] = roll.Clone()
	}
	return rolls
}

func (c *Controller) renderSelection() {
	c.mu.Lock()
	sides, count := c.sides, c.count
	c.mu.Unlock()

	c.view.RenderSelection(view.SelectionLabel(sides, count), count)
}
