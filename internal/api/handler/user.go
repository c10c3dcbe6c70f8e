package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tabletome/authcore/internal/api/middleware"
	"github.com/tabletome/authcore/internal/api/request"
	"github.com/tabletome/authcore/internal/api/response"
	"github.com/tabletome/authcore/internal/dependencies/clock"
	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/services/auth"
	"github.com/tabletome/authcore/internal/storage"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	users       storage.UserStore
	authService *auth.Service
	clock       clock.Clock
}

// NewUserHandler creates a new user handler
func NewUserHandler(users storage.UserStore, authService *auth.Service, clk clock.Clock) *UserHandler {
	return &UserHandler{
		users:       users,
		authService: authService,
		clock:       clk,
	}
}

// requireSelfOrAdmin rejects unless the bound principal is the resource
// owner or holds admin. The check runs against the verified principal from
// the middleware, never against client-supplied data.
func (h *UserHandler) requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, username string) bool {
	principal := middleware.MustGetPrincipal(r.Context())
	if principal.Username == username || principal.HasRole(model.RoleAdmin) {
		return true
	}
	WriteError(w, NewForbiddenError())
	return false
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UsersFromModels(users))
}

// Get handles GET /users/{username}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !h.requireSelfOrAdmin(w, r, username) {
		return
	}

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserResponse{User: response.UserFromModel(user)})
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	roles := []model.Role{model.RolePlayer}
	if len(req.Roles) > 0 {
		parsed, err := model.ParseRoles(req.Roles)
		if err != nil {
			WriteError(w, err)
			return
		}
		roles = parsed
	}

	hash, err := h.authService.HashPassword(r.Context(), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	now := h.clock.Now()
	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.UserResponse{User: response.UserFromModel(user)})
}

// Delete handles DELETE /users/{username}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.users.Delete(r.Context(), username); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "User deleted"})
}

// GetRoles handles GET /users/{username}/roles
func (h *UserHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !h.requireSelfOrAdmin(w, r, username) {
		return
	}

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RolesResponse{Roles: model.RoleStrings(user.Roles)})
}

// AssignRoles handles POST /users/{username}/roles (additive)
func (h *UserHandler) AssignRoles(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	roles, ok := h.decodeRoles(w, r)
	if !ok {
		return
	}

	// The service re-reads the acting user's current roles from storage, so
	// the grant is authorized by live state rather than the token claim the
	// middleware already checked
	principal := middleware.MustGetPrincipal(r.Context())
	user, err := h.authService.AssignRolesAsAdmin(r.Context(), principal.Username, username, roles)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserResponse{User: response.UserFromModel(user)})
}

// ReplaceRoles handles PUT /users/{username}/roles (authoritative set)
func (h *UserHandler) ReplaceRoles(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	roles, ok := h.decodeRoles(w, r)
	if !ok {
		return
	}

	user, err := h.users.SetRoles(r.Context(), username, roles)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserResponse{User: response.UserFromModel(user)})
}

// RevokeRole handles DELETE /users/{username}/roles/{role}
func (h *UserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username := vars["username"]

	role, err := model.ParseRole(vars["role"])
	if err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.users.RevokeRole(r.Context(), username, role)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserResponse{User: response.UserFromModel(user)})
}

// UpdatePassword handles PATCH /users/{username}/password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !h.requireSelfOrAdmin(w, r, username) {
		return
	}

	var req request.PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	hash, err := h.authService.HashPassword(r.Context(), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), username, hash); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserResponse{User: response.UserFromModel(user)})
}

// decodeRoles parses a roles request body against the closed enumeration
func (h *UserHandler) decodeRoles(w http.ResponseWriter, r *http.Request) ([]model.Role, bool) {
	var req request.RolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return nil, false
	}
	if len(req.Roles) == 0 {
		WriteError(w, NewInvalidRequestError("roles is required"))
		return nil, false
	}

	roles, err := model.ParseRoles(req.Roles)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return roles, true
}
