package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure by how callers should react to it
type Kind int

const (
	// KindInternal is any failure the taxonomy does not name
	KindInternal Kind = iota
	// KindUnauthorized means the session is invalid or expired
	KindUnauthorized
	// KindServer is a 5xx response; transient and retryable
	KindServer
	// KindNotFound is a 404 response
	KindNotFound
	// KindOffline means the API host could not be reached
	KindOffline
	// KindValidation means input was rejected, locally or by a 422
	KindValidation
	// KindRequest is any other 4xx response
	KindRequest
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server_error"
	case KindNotFound:
		return "not_found"
	case KindOffline:
		return "offline"
	case KindValidation:
		return "validation"
	case KindRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Retryable reports whether a read failing with this kind may be retried
func (k Kind) Retryable() bool {
	return k == KindServer || k == KindOffline
}

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeSessionExpired     ErrorCode = "AUTH-002"
	ErrCodeNotLoggedIn        ErrorCode = "AUTH-003"
	ErrCodeSessionBusy        ErrorCode = "AUTH-004"

	// API errors (API-001 to API-099)
	ErrCodeServer     ErrorCode = "API-001"
	ErrCodeNotFound   ErrorCode = "API-002"
	ErrCodeOffline    ErrorCode = "API-003"
	ErrCodeBadRequest ErrorCode = "API-004"
	ErrCodeDecode     ErrorCode = "API-005"

	// Validation errors (VALID-001 to VALID-099)
	ErrCodeInvalidEmail     ErrorCode = "VALID-001"
	ErrCodePasswordTooShort ErrorCode = "VALID-002"
	ErrCodeInvalidField     ErrorCode = "VALID-003"

	// Credential file errors (IO-001 to IO-099)
	ErrCodeCredentialRead  ErrorCode = "IO-001"
	ErrCodeCredentialWrite ErrorCode = "IO-002"

	// Configuration errors (CFG-001 to CFG-099)
	ErrCodeConfigInvalid ErrorCode = "CFG-001"

	// Diagnostics (DIAG-001 to DIAG-099)
	ErrCodeUnhealthy ErrorCode = "DIAG-001"
)

// Error is a classified failure with a code, suggestions and an optional cause
type Error struct {
	Code        ErrorCode
	Kind        Kind
	Status      int
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(code ErrorCode, kind Kind, message string) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, kind Kind, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// WithStatus records the HTTP status that produced the error
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}

// Common error constructors for frequently used errors

// NewInvalidCredentialsError creates the error returned when the token endpoint rejects a login
func NewInvalidCredentialsError(cause error) *Error {
	return Wrap(ErrCodeInvalidCredentials, KindUnauthorized, "invalid email or password", cause).
		WithStatus(401).
		WithSuggestion("Check the email address and password and try again")
}

// NewSessionExpiredError creates the error returned when an authenticated call receives a 401
func NewSessionExpiredError(message string) *Error {
	if message == "" {
		message = "session is invalid or has expired"
	}
	return New(ErrCodeSessionExpired, KindUnauthorized, message).
		WithStatus(401).
		WithSuggestion("Run 'boss auth login' to sign in again")
}

// NewNotLoggedInError creates the error returned by gated commands without a session
func NewNotLoggedInError() *Error {
	return New(ErrCodeNotLoggedIn, KindUnauthorized, "not logged in").
		WithSuggestion("Run 'boss auth login' to sign in")
}

// NewServerError creates a 5xx error
func NewServerError(status int, message string) *Error {
	if message == "" {
		message = "server error"
	}
	return New(ErrCodeServer, KindServer, message).
		WithStatus(status).
		WithSuggestion("Retry in a moment; the server reported an internal failure")
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *Error {
	if message == "" {
		message = "resource not found"
	}
	return New(ErrCodeNotFound, KindNotFound, message).WithStatus(404)
}

// NewOfflineError creates an error for an unreachable API host
func NewOfflineError(cause error) *Error {
	return Wrap(ErrCodeOffline, KindOffline, "network is unreachable", cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the API URL with 'boss config view'")
}

// NewValidationError creates a client-side input validation error
func NewValidationError(code ErrorCode, message string) *Error {
	return New(code, KindValidation, message)
}
