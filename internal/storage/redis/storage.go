package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/storage"
)

// maxTxRetries bounds optimistic transaction retries when a watched user
// record is modified concurrently
const maxTxRetries = 5

// Storage is a Redis-backed implementation of the user store. Read-modify-
// write operations run inside WATCH transactions so concurrent mutation of
// the same username serializes per key.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.UserStore = (*Storage)(nil)

func (s *Storage) Create(ctx context.Context, user *model.User) error {
	u := user.Clone()
	u.Roles = model.NormalizeRoles(u.Roles)

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	// SETNX makes the uniqueness check and the write a single operation
	created, err := s.client.SetNX(ctx, userKey(u.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrDuplicateUser
	}

	return s.client.SAdd(ctx, userIndexKey(), u.Username).Err()
}

func (s *Storage) Get(ctx context.Context, username string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) List(ctx context.Context) ([]*model.User, error) {
	usernames, err := s.client.SMembers(ctx, userIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(usernames))
	for _, username := range usernames {
		user, err := s.Get(ctx, username)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				// Index entry raced a delete; skip it
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Storage) Delete(ctx context.Context, username string) error {
	deleted, err := s.client.Del(ctx, userKey(username)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return model.ErrUserNotFound
	}
	return s.client.SRem(ctx, userIndexKey(), username).Err()
}

func (s *Storage) AssignRoles(ctx context.Context, username string, roles []model.Role) (*model.User, error) {
	return s.updateUser(ctx, username, func(user *model.User) error {
		user.Roles = model.UnionRoles(user.Roles, roles)
		return nil
	})
}

func (s *Storage) SetRoles(ctx context.Context, username string, roles []model.Role) (*model.User, error) {
	parsed, err := model.ParseRoles(model.RoleStrings(roles))
	if err != nil {
		return nil, err
	}
	return s.updateUser(ctx, username, func(user *model.User) error {
		user.Roles = parsed
		return nil
	})
}

func (s *Storage) RevokeRole(ctx context.Context, username string, role model.Role) (*model.User, error) {
	return s.updateUser(ctx, username, func(user *model.User) error {
		user.Roles = model.RemoveRole(user.Roles, role)
		return nil
	})
}

func (s *Storage) UpdatePassword(ctx context.Context, username string, hash string) error {
	_, err := s.updateUser(ctx, username, func(user *model.User) error {
		user.PasswordHash = hash
		return nil
	})
	return err
}

// updateUser applies mutate to the stored record inside a WATCH transaction,
// retrying on contention
func (s *Storage) updateUser(ctx context.Context, username string, mutate func(*model.User) error) (*model.User, error) {
	key := userKey(username)
	var updated *model.User

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrUserNotFound
			}
			return err
		}

		var user model.User
		if err := json.Unmarshal(data, &user); err != nil {
			return err
		}

		if err := mutate(&user); err != nil {
			return err
		}

		out, err := json.Marshal(&user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &user
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, redis.TxFailedErr
}
