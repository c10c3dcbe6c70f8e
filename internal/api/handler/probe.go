package handler

import (
	"net/http"

	"github.com/tabletome/authcore/internal/api/response"
)

// Probe handles the role-gated smoke-test endpoints. The role checks
// themselves live in the middleware; reaching the handler means the caller
// passed.
type Probe struct{}

// AdminOnly handles GET /admin-only
func (Probe) AdminOnly(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "admin access granted"})
}

// GMOnly handles GET /gm-only
func (Probe) GMOnly(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "gm access granted"})
}
