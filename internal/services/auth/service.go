package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/tabletome/authcore/internal/dependencies/clock"
	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/storage"
)

// Errors
var (
	// ErrInvalidCredentials covers unknown username, missing password hash,
	// and password mismatch alike, so a failed login never reveals whether
	// the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotAuthorized      = errors.New("not authorized")
)

// Service handles credential verification, token issuance, and privileged
// role changes
type Service struct {
	storage storage.UserStore
	clock   clock.Clock

	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int

	// hashGate bounds concurrent bcrypt work so a burst of logins cannot
	// monopolize the scheduler
	hashGate *semaphore.Weighted
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs tokens. If empty, a random per-process secret is
	// generated; all tokens then expire with the process.
	Secret string

	// TokenTTL is the token expiry window
	TokenTTL time.Duration

	// BcryptCost is the bcrypt cost factor applied to all stored hashes
	BcryptCost int

	// MaxConcurrentHashes caps in-flight bcrypt operations
	MaxConcurrentHashes int64
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL:            600 * time.Second,
		BcryptCost:          10,
		MaxConcurrentHashes: 4,
	}
}

// New creates a new auth service
func New(store storage.UserStore, clk clock.Clock, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.MaxConcurrentHashes == 0 {
		cfg.MaxConcurrentHashes = defaults.MaxConcurrentHashes
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}

	return &Service{
		storage:    store,
		clock:      clk,
		secret:     secret,
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
		hashGate:   semaphore.NewWeighted(cfg.MaxConcurrentHashes),
	}
}

// LoginResult holds the authenticated user and the issued token
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies a username/password pair and issues a signed token whose
// payload snapshots the user's role set at this instant. Later role changes
// do not touch tokens already handed out.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.storage.Get(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Identities without a password hash cannot log in
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := s.hashGate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	s.hashGate.Release(1)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// HashPassword produces a bcrypt hash at the configured cost. The salt is
// per-record; bcrypt embeds it in the hash.
func (s *Service) HashPassword(ctx context.Context, password string) (string, error) {
	if err := s.hashGate.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.hashGate.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AssignRolesAsAdmin grants roles to the target user after re-reading the
// acting user's current role set from storage. Authority is always checked
// live, never against a possibly-stale token claim.
func (s *Service) AssignRolesAsAdmin(ctx context.Context, actingUsername, targetUsername string, roles []model.Role) (*model.User, error) {
	acting, err := s.storage.Get(ctx, actingUsername)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	if !acting.HasRole(model.RoleAdmin) {
		return nil, ErrNotAuthorized
	}

	return s.storage.AssignRoles(ctx, targetUsername, roles)
}
