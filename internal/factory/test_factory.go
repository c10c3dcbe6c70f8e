package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tabletome/authcore/internal/dependencies/mocks"
	"github.com/tabletome/authcore/internal/services/auth"
	"github.com/tabletome/authcore/internal/storage/memory"
	"github.com/tabletome/authcore/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	Storage   *memory.Storage
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with a mocked clock, an
// in-memory store, and cheap hashing
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	authService := auth.New(store, mockClock, auth.Config{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
	})

	app := newWithDependencies(store, mockClock, authService, testutil.NopLogger())

	return &TestApp{
		App:       app,
		Storage:   store,
		MockClock: mockClock,
	}
}
