package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// RolesRequest is the request body for assigning or replacing roles
type RolesRequest struct {
	Roles []string `json:"roles"`
}

// PasswordRequest is the request body for changing a password
type PasswordRequest struct {
	Password string `json:"password"`
}
