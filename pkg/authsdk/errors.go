package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/chirp/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeValidation          = "validation_error"
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeTokenExpired        = httpx.CodeTokenExpired
	ErrorCodeTokenInvalid        = httpx.CodeTokenInvalid
	ErrorCodeNoToken             = httpx.CodeNoToken
	ErrorCodeUserNotFound        = "user_not_found"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeConflict            = "conflict"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeServerConfiguration = "server_configuration_error"
	ErrorCodeServerError         = "server_error"
	ErrorCodeUpstreamUnavailable = "upstream_unavailable"
	ErrorCodeSessionExpired      = "session_expired"
)

// ============================================================================
// APIError - the wire error type
// ============================================================================

// APIError is the error body every endpoint returns. It implements error and
// is shared by the server (to write responses) and the client (to represent
// them).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine readable error code (e.g. "token_expired")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// Fields carries per-field messages for validation errors
	Fields map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches any APIError with the same code, so a parsed response can be
// compared against the predefined values with errors.Is.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
		Fields:           e.Fields,
	})
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	cp := *e
	cp.Description = desc
	return &cp
}

// WithFields returns a copy of e carrying per-field messages.
func (e *APIError) WithFields(fields map[string]string) *APIError {
	cp := *e
	cp.Fields = fields
	return &cp
}

// NewAPIError creates an APIError with the given status code, code and description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrValidation is returned when a request body fails validation.
	ErrValidation = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "validation failed",
	}

	// ErrInvalidRequest is returned when the request body cannot be parsed.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	ErrTokenExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenExpired,
		Description: "token has expired",
	}

	ErrTokenInvalid = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenInvalid,
		Description: "token is invalid",
	}

	ErrNoToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNoToken,
		Description: "no token provided",
	}

	// ErrUserNotFound is returned when a valid token names a user that no
	// longer exists.
	ErrUserNotFound = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUserNotFound,
		Description: "user not found",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "user already exists",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "too many requests",
	}

	ErrServerConfiguration = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerConfiguration,
		Description: "server is misconfigured",
	}

	// ErrServerError is returned for anything unexpected. It never carries
	// internal detail.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrUpstreamUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeUpstreamUnavailable,
		Description: "an upstream service is unavailable",
	}

	// ErrSessionExpired is produced client side when a 401 could not be
	// recovered by refreshing. The session has been logged out.
	ErrSessionExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeSessionExpired,
		Description: "session expired, please log in again",
	}
)

// ErrTokenRefreshed is returned by the Interceptor when a 401 was recovered
// by refreshing the session. The request was not replayed; retry it.
var ErrTokenRefreshed = errors.New("authsdk: token refreshed, retry the request")

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse converts a non-2xx response into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	// Success responses
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Fields:      errResp.Fields,
		}
	}

	// Fallback: create generic error from status code
	code := ErrorCodeServerError
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		code = ErrorCodeTokenInvalid
	case resp.StatusCode == http.StatusTooManyRequests:
		code = ErrorCodeRateLimited
	case resp.StatusCode == http.StatusNotFound:
		code = ErrorCodeNotFound
	case resp.StatusCode < 500:
		code = ErrorCodeInvalidRequest
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        code,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
