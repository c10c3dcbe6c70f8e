package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username already exists")

	// Role errors
	ErrInvalidRole = errors.New("invalid role")
)
