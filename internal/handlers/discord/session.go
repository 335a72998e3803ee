package discord

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/KirkDiggler/dicetray/internal/app"
	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
)

// panelSession is one Discord user's controller and the view it renders into
type panelSession struct {
	controller *app.Controller
	view       *panelView
}

// sessionManager creates a controller per Discord user on first interaction
type sessionManager struct {
	mu         sync.Mutex
	sessions   map[string]*panelSession
	service    roller.Service
	profileDir string
	rollDelay  time.Duration
	logger     *slog.Logger
}

func newSessionManager(service roller.Service, profileDir string, rollDelay time.Duration, logger *slog.Logger) *sessionManager {
	return &sessionManager{
		sessions:   make(map[string]*panelSession),
		service:    service,
		profileDir: profileDir,
		rollDelay:  rollDelay,
		logger:     logger,
	}
}

// get returns the user's session, starting one if needed, and keeps the
// saved name in step with the member's current display name
func (m *sessionManager) get(ctx context.Context, userID, userName string) (*panelSession, error) {
	m.mu.Lock()
	session, ok := m.sessions[userID]
	m.mu.Unlock()

	if !ok {
		var err error
		session, err = m.start(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	if userName != "" && session.controller.UserName() != userName {
		session.controller.SetName(ctx, userName)
	}

	return session, nil
}

func (m *sessionManager) start(ctx context.Context, userID string) (*panelSession, error) {
	store, err := m.openProfile(userID)
	if err != nil {
		return nil, err
	}

	panel := newPanelView()
	controller, err := app.New(&app.Config{
		Service:   m.service,
		Profile:   store,
		View:      panel,
		RollDelay: m.rollDelay,
		Logger:    m.logger.With("discord_user_id", userID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	// The panel still works without history, so start failures are only logged
	if err := controller.Start(ctx); err != nil {
		m.logger.Warn("panel started without history", "discord_user_id", userID, "err", err)
	}

	session := &panelSession{
		controller: controller,
		view:       panel,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another interaction may have won the race
	if existing, ok := m.sessions[userID]; ok {
		_ = controller.Stop()
		return existing, nil
	}
	m.sessions[userID] = session

	return session, nil
}

// openProfile returns the user's profile file, or a memory profile when no
// directory is configured
func (m *sessionManager) openProfile(userID string) (profile.Store, error) {
	if m.profileDir == "" {
		return profile.NewMemory(), nil
	}

	store, err := profile.NewFile(&profile.FileConfig{
		Path:   filepath.Join(m.profileDir, userID+".yaml"),
		Logger: m.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}

	return store, nil
}

// closeAll stops every controller
func (m *sessionManager) closeAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*panelSession)
	m.mu.Unlock()

	for userID, session := range sessions {
		if err := session.controller.Stop(); err != nil {
			m.logger.Warn("failed to stop panel", "discord_user_id", userID, "err", err)
		}
	}
}
