package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case UserResult:
		o.printUser(v.User)
	case UserList:
		o.printUserList(v)
	case LoginResult:
		o.printLoginResult(v)
	case RoleList:
		o.printRoleList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// UserResult wraps a single user response
type UserResult struct {
	User User `json:"user"`
}

// UserList wraps the users collection response
type UserList struct {
	Users []User `json:"users"`
}

// LoginResult combines user, token, and expiry
type LoginResult struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RoleList wraps a user's roles response
type RoleList struct {
	Roles []string `json:"roles"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s\n", u.Username)
	fmt.Printf("Roles: %s\n", strings.Join(u.Roles, ", "))
	if !u.CreatedAt.IsZero() {
		fmt.Printf("Created: %s\n", u.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printUserList(l UserList) {
	fmt.Printf("Users (%d):\n", len(l.Users))
	for _, u := range l.Users {
		fmt.Printf("  - %s [%s]\n", u.Username, strings.Join(u.Roles, ", "))
	}
}

func (o *Output) printLoginResult(r LoginResult) {
	o.printUser(r.User)
	fmt.Printf("Token: %s\n", r.Token)
	fmt.Printf("Expires: %s\n", r.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printRoleList(r RoleList) {
	fmt.Printf("Roles: %s\n", strings.Join(r.Roles, ", "))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
