package model

import "time"

// Role is a named permission tier checked by the authorization middleware.
// The set of valid roles is closed; anything else must be rejected at the
// boundary, never stored.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleGM     Role = "gm"
	RolePlayer Role = "player"
)

// roleRank defines the canonical ordering for role lists. Role sets are
// semantically unordered; sorting them makes responses deterministic.
var roleRank = map[Role]int{
	RoleAdmin:  0,
	RoleGM:     1,
	RolePlayer: 2,
}

// ParseRole validates a raw role string against the closed enumeration
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

// ParseRoles validates a list of raw role strings, failing on the first
// unknown value
func ParseRoles(raw []string) ([]Role, error) {
	roles := make([]Role, 0, len(raw))
	for _, s := range raw {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NormalizeRoles(roles), nil
}

// NormalizeRoles deduplicates a role list and sorts it into canonical order
func NormalizeRoles(roles []Role) []Role {
	seen := make(map[Role]bool, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && roleRank[out[j]] < roleRank[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// UnionRoles returns the normalized union of two role sets
func UnionRoles(a, b []Role) []Role {
	merged := make([]Role, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return NormalizeRoles(merged)
}

// RemoveRole returns the role set without the given role. Removing a role
// that is not held is a no-op.
func RemoveRole(roles []Role, role Role) []Role {
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if r != role {
			out = append(out, r)
		}
	}
	return out
}

// RoleStrings converts a role list to plain strings for serialization
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// User is an identity record. The username doubles as the record key and
// the token subject; it is case-sensitive and immutable.
type User struct {
	Username string

	// PasswordHash is the bcrypt hash of the password. Empty for identities
	// that cannot log in with a password (login must fail for those, never
	// silently succeed).
	PasswordHash string

	Roles []Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate stored state through
// a returned pointer
func (u *User) Clone() *User {
	c := *u
	c.Roles = make([]Role, len(u.Roles))
	copy(c.Roles, u.Roles)
	return &c
}
