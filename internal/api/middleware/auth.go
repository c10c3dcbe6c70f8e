package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tabletome/authcore/internal/api/apierr"
	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/services/auth"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the verified identity bound to a request. Handlers must check
// ownership and roles against this, never against client-supplied data.
type Principal struct {
	Username string
	Roles    []model.Role
}

// HasRole reports whether the principal's token carried the given role
func (p *Principal) HasRole(role model.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authenticate creates authentication middleware. The pipeline is: extract
// the bearer credential, verify it, bind the principal into the request
// context, then check the required roles (if any). Each stage short-circuits
// to a terminal rejection.
func Authenticate(authService *auth.Service, required ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				apierr.WriteError(w, apierr.NewMissingTokenError())
				return
			}

			payload, err := authService.VerifyToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			principal := &Principal{
				Username: payload.Subject,
				Roles:    payload.Roles,
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			r = r.WithContext(ctx)

			for _, role := range required {
				if !principal.HasRole(role) {
					apierr.WriteError(w, apierr.NewForbiddenError())
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken reads the bearer credential from the Authorization
// header. The scheme keyword matches case-insensitively.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// GetPrincipal returns the authenticated principal from the request context
func GetPrincipal(ctx context.Context) *Principal {
	principal, _ := ctx.Value(principalContextKey).(*Principal)
	return principal
}

// MustGetPrincipal returns the authenticated principal or panics
func MustGetPrincipal(ctx context.Context) *Principal {
	principal := GetPrincipal(ctx)
	if principal == nil {
		panic("no principal in context - auth middleware not applied?")
	}
	return principal
}
