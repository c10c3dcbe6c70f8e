package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// StorageType selects the user store backend
type StorageType string

const (
	StorageTypeMemory StorageType = "memory"
	StorageTypeRedis  StorageType = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageType
func (s *StorageType) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "memory", "redis":
		*s = StorageType(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageType: %q (valid options: memory, redis)", v)
	}
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// StorageConfig holds store selection and Redis connection settings
type StorageConfig struct {
	Type         StorageType `env:"STORAGE_TYPE"       envDefault:"memory"`
	RedisURL     string      `env:"REDIS_URL"          envDefault:"redis://localhost:6379"`
	PoolSize     int         `env:"REDIS_POOL_SIZE"    envDefault:"10"`
	MinIdleConns int         `env:"REDIS_MIN_IDLE"     envDefault:"2"`
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	// TokenSecret signs bearer tokens. Rotating it invalidates every
	// outstanding token at once. Empty means a random per-process secret
	// (dev mode only).
	TokenSecret string `env:"TOKEN_SECRET"`

	// TokenTTL is the token expiry window
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"600s"`

	// BcryptCost is the fixed cost factor for password hashing
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// MaxConcurrentHashes caps in-flight bcrypt operations
	MaxConcurrentHashes int64 `env:"MAX_CONCURRENT_HASHES" envDefault:"4"`
}

// BootstrapConfig controls seeding of the initial admin account. Seeding is
// skipped when the password is empty or the username already exists.
type BootstrapConfig struct {
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD"`
}

// Config is the main application configuration, loaded from environment
// variables
type Config struct {
	// Dev enables development conveniences such as the generated token
	// secret and the default bootstrap password
	Dev bool `env:"DEV" envDefault:"false"`

	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	Storage   StorageConfig   `envPrefix:"AUTHCORE_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Bootstrap BootstrapConfig `envPrefix:"BOOTSTRAP_ADMIN_"`
}

// Load parses configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Auth.TokenSecret == "" && !cfg.Dev {
		return Config{}, fmt.Errorf("AUTH_TOKEN_SECRET is required outside dev mode")
	}
	if cfg.Dev && cfg.Bootstrap.Password == "" {
		cfg.Bootstrap.Password = "admin123"
	}

	return cfg, nil
}
