package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tabletome/authcore/internal/config"
	"github.com/tabletome/authcore/internal/dependencies/clock"
	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/services/auth"
	"github.com/tabletome/authcore/internal/storage"
	"github.com/tabletome/authcore/internal/storage/memory"
	redisstorage "github.com/tabletome/authcore/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Users storage.UserStore

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService *auth.Service

	logger *slog.Logger
}

// New creates a new application with all dependencies wired from config
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.UserStore
	switch cfg.Storage.Type {
	case config.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		redisCfg.PoolSize = cfg.Storage.PoolSize
		redisCfg.MinIdleConns = cfg.Storage.MinIdleConns

		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case config.StorageTypeMemory, "":
		store = memory.New()
	default:
		return nil, errors.New("invalid storage type: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	authService := auth.New(store, clk, auth.Config{
		Secret:              cfg.Auth.TokenSecret,
		TokenTTL:            cfg.Auth.TokenTTL,
		BcryptCost:          cfg.Auth.BcryptCost,
		MaxConcurrentHashes: cfg.Auth.MaxConcurrentHashes,
	})

	return newWithDependencies(store, clk, authService, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.UserStore, clk clock.Clock, authService *auth.Service, logger *slog.Logger) *App {
	return &App{
		Users:       store,
		Clock:       clk,
		AuthService: authService,
		logger:      logger,
	}
}

// SeedBootstrapAdmin creates the initial admin account if it does not exist.
// A blank password disables seeding. Hashing goes through the auth service so
// the configured cost factor applies to the seed like any other account.
func (a *App) SeedBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.Password == "" {
		return nil
	}

	if _, err := a.Users.Get(ctx, cfg.Username); err == nil {
		return nil
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	hash, err := a.AuthService.HashPassword(ctx, cfg.Password)
	if err != nil {
		return err
	}

	now := a.Clock.Now()
	err = a.Users.Create(ctx, &model.User{
		Username:     cfg.Username,
		PasswordHash: hash,
		Roles:        []model.Role{model.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with another instance seeding the same store
		if errors.Is(err, model.ErrDuplicateUser) {
			return nil
		}
		return err
	}

	a.logger.Info("seeded bootstrap admin", slog.String("username", cfg.Username))
	return nil
}
