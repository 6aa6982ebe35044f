package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/identity/pkg/httpx"
)

// Error codes returned by the identity service.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeNotActive        = "not_active"
	ErrorCodeNotValidated     = "not_validated"
	ErrorCodeLocked           = "locked"
	ErrorCodeNotAuthorized    = "not_authorized"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenMalformed   = "token_malformed"
	ErrorCodePermissionDenied = "permission_denied"
	ErrorCodeNotAuthenticated = "not_authenticated"
	ErrorCodeCSRFMismatch     = "csrf_mismatch"
	ErrorCodeUnavailable      = "service_unavailable"
)

// APIError represents an error response from the identity service. It
// implements the error interface and is used both by HTTP handlers (to write
// responses) and by the SDK client (to represent errors).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "locked", "not_found")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// Predefined errors matching the service's taxonomy. A failed login never
// reveals whether the email or the password was wrong.
var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrNotActive = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNotActive,
		Description: "account is not active",
	}

	ErrNotValidated = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNotValidated,
		Description: "account email has not been validated",
	}

	ErrLocked = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeLocked,
		Description: "account is locked after too many failed attempts",
	}

	ErrNotAuthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNotAuthorized,
		Description: "invalid credentials",
	}

	ErrTokenExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenExpired,
		Description: "the token has expired",
	}

	ErrTokenMalformed = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenMalformed,
		Description: "the token is malformed or its signature is invalid",
	}

	ErrPermissionDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodePermissionDenied,
		Description: "caller lacks a required permission",
	}

	ErrNotAuthenticated = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNotAuthenticated,
		Description: "authentication required",
	}

	ErrCSRFMismatch = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeCSRFMismatch,
		Description: "csrf token missing or mismatched",
	}

	ErrUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeUnavailable,
		Description: "the service is temporarily unavailable",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// parseErrorResponse attempts to parse an HTTP error response into a typed
// *APIError. Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeUnavailable,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
