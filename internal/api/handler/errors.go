package handler

import (
	"net/http"

	"github.com/tabletome/authcore/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeMissingToken       = apierr.CodeMissingToken
	CodeInvalidToken       = apierr.CodeInvalidToken
	CodeForbidden          = apierr.CodeForbidden
	CodeUserNotFound       = apierr.CodeUserNotFound
	CodeDuplicateUser      = apierr.CodeDuplicateUser
	CodeInvalidRole        = apierr.CodeInvalidRole
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewForbiddenError creates a role/ownership rejection
func NewForbiddenError() error {
	return apierr.NewForbiddenError()
}
