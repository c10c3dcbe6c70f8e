package memory

import (
	"context"
	"sync"

	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/storage"
)

// Storage is an in-memory implementation of the user store. It is the
// reference implementation and the test double; durable storage lives behind
// the same interface.
type Storage struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users: make(map[string]*model.User),
	}
}

// Ensure Storage implements the interface
var _ storage.UserStore = (*Storage)(nil)

func (s *Storage) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Username]; exists {
		return model.ErrDuplicateUser
	}
	u := user.Clone()
	u.Roles = model.NormalizeRoles(u.Roles)
	s.users[user.Username] = u
	return nil
}

func (s *Storage) Get(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) List(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}
	return users, nil
}

func (s *Storage) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, username)
	return nil
}

func (s *Storage) AssignRoles(ctx context.Context, username string, roles []model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user.Roles = model.UnionRoles(user.Roles, roles)
	return user.Clone(), nil
}

func (s *Storage) SetRoles(ctx context.Context, username string, roles []model.Role) (*model.User, error) {
	// Validate before taking the write path so an invalid set never mutates
	parsed, err := model.ParseRoles(model.RoleStrings(roles))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user.Roles = parsed
	return user.Clone(), nil
}

func (s *Storage) RevokeRole(ctx context.Context, username string, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user.Roles = model.RemoveRole(user.Roles, role)
	return user.Clone(), nil
}

func (s *Storage) UpdatePassword(ctx context.Context, username string, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}
