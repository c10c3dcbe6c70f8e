package storage

import (
	"context"

	"github.com/tabletome/authcore/internal/model"
)

// UserStore defines the interface for user persistence. It is a pure data
// layer: password hashing happens in the caller, and every role list that
// reaches a store method has already been parsed against the closed Role
// enumeration (SetRoles re-checks, since it accepts an authoritative set).
//
// All mutation goes through this narrow operation set, never through direct
// map access, so locking discipline is centralized in the implementations.
type UserStore interface {
	// Create stores a new user. Fails with model.ErrDuplicateUser if the
	// username is taken, without mutating state.
	Create(ctx context.Context, user *model.User) error

	// Get returns the user by username. Fails with model.ErrUserNotFound.
	Get(ctx context.Context, username string) (*model.User, error)

	// List returns all users. Ordering is not significant.
	List(ctx context.Context) ([]*model.User, error)

	// Delete removes the user. Fails with model.ErrUserNotFound if absent.
	Delete(ctx context.Context, username string) error

	// AssignRoles adds roles to the user's set (additive union). Assigning
	// an already-held role is a no-op. Returns the updated user.
	AssignRoles(ctx context.Context, username string, roles []model.Role) (*model.User, error)

	// SetRoles replaces the user's role set with exactly the given set.
	// Fails with model.ErrInvalidRole if any role is outside the enumeration.
	SetRoles(ctx context.Context, username string, roles []model.Role) (*model.User, error)

	// RevokeRole removes a single role. Revoking a role the user does not
	// hold is a no-op, not an error. Returns the updated user.
	RevokeRole(ctx context.Context, username string, role model.Role) (*model.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, username string, hash string) error
}
