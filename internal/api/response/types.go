package response

import (
	"time"

	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/services/auth"
)

// User represents a user in API responses. The password hash never leaves
// the service.
type User struct {
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		Username:  u.Username,
		Roles:     model.RoleStrings(u.Roles),
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponseFromResult creates a LoginResponse from a login result
func LoginResponseFromResult(r *auth.LoginResult) LoginResponse {
	return LoginResponse{
		User:      UserFromModel(r.User),
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
	}
}

// UserResponse wraps a single user
type UserResponse struct {
	User User `json:"user"`
}

// UsersResponse wraps a user list
type UsersResponse struct {
	Users []User `json:"users"`
}

// UsersFromModels converts a list of users
func UsersFromModels(users []*model.User) UsersResponse {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = UserFromModel(u)
	}
	return UsersResponse{Users: out}
}

// RolesResponse wraps a role list
type RolesResponse struct {
	Roles []string `json:"roles"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
