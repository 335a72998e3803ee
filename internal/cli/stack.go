package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/config"
	"github.com/KirkDiggler/dicetray/internal/dice"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
	"github.com/redis/go-redis/v9"
)

// stack is an opened history backend with the roller service on top
type stack struct {
	service roller.Service
	closers []func() error
}

// Close releases the backend connections
func (s *stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStack connects the configured backend. The local backend keeps its
// history in store, which must not be nil for it.
func openStack(cfg *config.Config, store profile.Store, logger *slog.Logger) (*stack, error) {
	s := &stack{}

	var repo history.Repository
	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.closers = append(s.closers, client.Close)

		redisRepo, err := history.NewRedis(&history.RedisConfig{
			RedisClient: client,
			Logger:      logger,
		})
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		repo = redisRepo

	case config.BackendSQLite:
		sqliteRepo, err := history.NewSQLite(&history.SQLiteConfig{
			DSN: cfg.SQLiteDSN,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, sqliteRepo.Close)
		repo = sqliteRepo

	case config.BackendLocal:
		if store == nil {
			return nil, errors.New("the local backend needs a profile")
		}

		localRepo, err := history.NewLocal(&history.LocalConfig{
			Profile: store,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, localRepo.Close)
		repo = localRepo

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	service, err := roller.New(&roller.Config{
		Repository: repo,
		DiceRoller: dice.New(&dice.Config{}),
		Logger:     logger,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.service = service

	return s, nil
}

// openProfile opens the CLI's profile file
func openProfile(cfg *config.Config, logger *slog.Logger) (profile.Store, error) {
	path, err := cfg.ProfileFile()
	if err != nil {
		return nil, err
	}

	return profile.NewFile(&profile.FileConfig{
		Path:   path,
		Logger: logger,
	})
}
