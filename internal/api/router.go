package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tabletome/authcore/internal/api/handler"
	"github.com/tabletome/authcore/internal/api/middleware"
	"github.com/tabletome/authcore/internal/dependencies/clock"
	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/services/auth"
	"github.com/tabletome/authcore/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Users       storage.UserStore
	Clock       clock.Clock
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.Users, cfg.AuthService, cfg.Clock)
	probe := handler.Probe{}

	// Create middleware. Self-or-admin routes authenticate without a role
	// requirement; the ownership check is path-dependent and lives in the
	// handler.
	authOnly := middleware.Authenticate(cfg.AuthService)
	adminOnly := middleware.Authenticate(cfg.AuthService, model.RoleAdmin)
	gmOnly := middleware.Authenticate(cfg.AuthService, model.RoleGM)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Public routes
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// User management
	r.Handle("/users", adminOnly(http.HandlerFunc(userHandler.List))).Methods(http.MethodGet)
	r.Handle("/users", adminOnly(http.HandlerFunc(userHandler.Create))).Methods(http.MethodPost)
	r.Handle("/users/{username}", authOnly(http.HandlerFunc(userHandler.Get))).Methods(http.MethodGet)
	r.Handle("/users/{username}", adminOnly(http.HandlerFunc(userHandler.Delete))).Methods(http.MethodDelete)

	// Role management
	r.Handle("/users/{username}/roles", authOnly(http.HandlerFunc(userHandler.GetRoles))).Methods(http.MethodGet)
	r.Handle("/users/{username}/roles", adminOnly(http.HandlerFunc(userHandler.AssignRoles))).Methods(http.MethodPost)
	r.Handle("/users/{username}/roles", adminOnly(http.HandlerFunc(userHandler.ReplaceRoles))).Methods(http.MethodPut)
	r.Handle("/users/{username}/roles/{role}", adminOnly(http.HandlerFunc(userHandler.RevokeRole))).Methods(http.MethodDelete)

	// Password management
	r.Handle("/users/{username}/password", authOnly(http.HandlerFunc(userHandler.UpdatePassword))).Methods(http.MethodPatch)

	// Role probe endpoints for smoke tests
	r.Handle("/admin-only", adminOnly(http.HandlerFunc(probe.AdminOnly))).Methods(http.MethodGet)
	r.Handle("/gm-only", gmOnly(http.HandlerFunc(probe.GMOnly))).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
