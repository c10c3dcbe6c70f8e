package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletome/authcore/internal/api"
	"github.com/tabletome/authcore/internal/config"
	"github.com/tabletome/authcore/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "authctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/authctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application with in-memory storage
	cfg := config.Config{
		Auth: config.AuthConfig{
			TokenSecret: "e2e-test-secret",
			TokenTTL:    10 * time.Minute,
			BcryptCost:  4,
		},
		Bootstrap: config.BootstrapConfig{
			Username: "admin",
			Password: "admin123",
		},
	}
	app, err := factory.New(cfg, logger)
	require.NoError(t, err)

	err = app.SeedBootstrapAdmin(context.Background(), cfg.Bootstrap)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		Users:       app.Users,
		Clock:       app.Clock,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type userWrapper struct {
	User userResponse `json:"user"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
}

type rolesResponse struct {
	Roles []string `json:"roles"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_LoginAndUserCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Login as the seeded admin
	output, err := cli.run("login", "--user", "admin", "--pass", "admin123")
	require.NoError(t, err, "output: %s", output)

	var loginResp loginResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loginResp))
	assert.Equal(t, "admin", loginResp.User.Username)
	assert.Equal(t, []string{"admin"}, loginResp.User.Roles)
	assert.NotEmpty(t, loginResp.Token)

	// Create a user (token should be saved in token file)
	output, err = cli.run("user", "create", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var created userWrapper
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Equal(t, "alice", created.User.Username)
	assert.Equal(t, []string{"player"}, created.User.Roles)

	// Get the user
	output, err = cli.run("user", "get", "alice")
	require.NoError(t, err, "output: %s", output)

	var got userWrapper
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "alice", got.User.Username)

	// List users
	output, err = cli.run("user", "list")
	require.NoError(t, err, "output: %s", output)

	var list userListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	assert.Len(t, list.Users, 2)

	// Delete the user
	output, err = cli.run("user", "delete", "alice")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("user", "get", "alice")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}

func TestCLI_RoleCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("login", "--user", "admin", "--pass", "admin123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("user", "create", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	// Assign gm additively
	output, err = cli.run("role", "assign", "alice", "--role", "gm")
	require.NoError(t, err, "output: %s", output)

	var user userWrapper
	require.NoError(t, json.Unmarshal([]byte(output), &user))
	assert.Equal(t, []string{"gm", "player"}, user.User.Roles)

	// List roles
	output, err = cli.run("role", "list", "alice")
	require.NoError(t, err, "output: %s", output)

	var roles rolesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &roles))
	assert.Equal(t, []string{"gm", "player"}, roles.Roles)

	// Replace the role set
	output, err = cli.run("role", "replace", "alice", "--role", "player")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &user))
	assert.Equal(t, []string{"player"}, user.User.Roles)

	// Revoke
	output, err = cli.run("role", "revoke", "alice", "player")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &user))
	assert.Empty(t, user.User.Roles)
}

func TestCLI_NonAdminForbidden(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("login", "--user", "admin", "--pass", "admin123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("user", "create", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	// Login as alice and grab her token
	output, err = cli.run("login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	var loginResp loginResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loginResp))

	// Alice cannot list users or grant roles
	output, err = cli.runWithToken(loginResp.Token, "user", "list")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "forbidden")

	output, err = cli.runWithToken(loginResp.Token, "role", "assign", "alice", "--role", "admin")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "forbidden")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// User list without a token
	output, err := cli.run("user", "list")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "missing")

	// Bad credentials
	output, err = cli.run("login", "--user", "admin", "--pass", "wrong")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "invalid username or password")
}
