package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lib/pq"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// Sentinel errors classify every AppError
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation error")
	ErrDuplicate      = errors.New("duplicate resource")
	ErrExpiredToken   = errors.New("expired token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrUpstream       = errors.New("upstream service error")
)

// AppError is an error that knows how it is reported to API clients
type AppError struct {
	Err        error  // Sentinel the error is classified as
	StatusCode int    // HTTP status code
	Message    string // Safe to show to the client
	DevInfo    string // Logged only
	Field      string // Request field the error refers to
	Details    map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given error and status code
func New(err error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError creates a new validation error for a specific field
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return New(ErrBadRequest, http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing resource, for example a page that is
// not connected or not owned by the caller.
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	return New(ErrNotFound, http.StatusNotFound, fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier))
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	return New(ErrUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = constants.MsgAccessDenied
	}
	return New(ErrForbidden, http.StatusForbidden, message)
}

// NewInternalServerError hides err from the client and keeps it as DevInfo
func NewInternalServerError(err error) *AppError {
	appErr := New(ErrInternalServer, http.StatusInternalServerError, constants.MsgInternalServerError)
	if err != nil {
		appErr.DevInfo = err.Error()
	}
	return appErr
}

// NewDuplicateError creates a new duplicate resource error
func NewDuplicateError(resourceType, field string, value interface{}) *AppError {
	appErr := New(ErrDuplicate, http.StatusConflict, fmt.Sprintf("%s with %s '%v' already exists", resourceType, field, value))
	appErr.Field = field
	return appErr
}

// NewExpiredTokenError creates a new expired token error
func NewExpiredTokenError() *AppError {
	return New(ErrExpiredToken, http.StatusUnauthorized, constants.MsgTokenExpired)
}

// NewInvalidTokenError creates a new invalid token error
func NewInvalidTokenError() *AppError {
	return New(ErrInvalidToken, http.StatusUnauthorized, constants.MsgInvalidToken)
}

// NewConflictError creates a conflict error for a state clash that is not a unique key,
// such as blocking a user that is already blocked
func NewConflictError(message string) *AppError {
	return New(ErrDuplicate, http.StatusConflict, message)
}

// NewUpstreamError wraps a failure reported by the Graph API
func NewUpstreamError(err error) *AppError {
	appErr := New(ErrUpstream, http.StatusBadGateway, constants.MsgUpstreamRejected)
	if err != nil {
		appErr.DevInfo = err.Error()
	}
	return appErr
}

// newTimeoutError reports a deadline that expired while waiting on a dependency
func newTimeoutError(err error) *AppError {
	appErr := New(ErrUpstream, http.StatusGatewayTimeout, constants.MsgUpstreamTimeout)
	appErr.DevInfo = err.Error()
	return appErr
}

// ParseError converts any error into an AppError so handlers can report it
// uniformly. Errors that are not recognised become internal server errors.
func ParseError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if parsed := parseSentinel(err); parsed != nil {
		return parsed
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if parsed := parsePQError(pqErr); parsed != nil {
			return parsed
		}
	}

	// Drivers other than lib/pq only expose these as text
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint") {
		appErr := New(ErrDuplicate, http.StatusConflict, constants.MsgResourceAlreadyExists)
		appErr.DevInfo = err.Error()
		return appErr
	}

	return NewInternalServerError(err)
}

// parseSentinel maps the package sentinels and well-known stdlib errors
func parseSentinel(err error) *AppError {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		appErr := New(ErrNotFound, http.StatusNotFound, constants.MsgResourceNotFound)
		appErr.DevInfo = err.Error()
		return appErr
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return NewForbiddenError("")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrDuplicate):
		return NewConflictError(constants.MsgResourceAlreadyExists)
	case errors.Is(err, ErrExpiredToken):
		return NewExpiredTokenError()
	case errors.Is(err, ErrInvalidToken):
		return NewInvalidTokenError()
	case errors.Is(err, ErrUpstream):
		return NewUpstreamError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return newTimeoutError(err)
	}
	return nil
}

// parsePQError maps PostgreSQL constraint violations to client errors
func parsePQError(pqErr *pq.Error) *AppError {
	var appErr *AppError

	switch pqErr.Code {
	case constants.PGErrorDuplicateConstraint:
		appErr = New(ErrDuplicate, http.StatusConflict, constants.MsgResourceAlreadyExists)
		// Unique indexes are named idx_<field>
		if _, field, ok := strings.Cut(pqErr.Constraint, "idx_"); ok {
			appErr.Field = field
		}
	case constants.PGErrorForeignKeyConstraint:
		appErr = New(ErrBadRequest, http.StatusBadRequest, "This operation violates a foreign key constraint")
	case constants.PGErrorNotNullConstraint:
		appErr = New(ErrValidation, http.StatusBadRequest, fmt.Sprintf("The %s field cannot be empty", pqErr.Column))
		appErr.Field = pqErr.Column
	default:
		return nil
	}

	appErr.DevInfo = pqErr.Error()
	return appErr
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if an error is a duplicate resource error
func IsDuplicateError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusConflict
	}
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// StatusCode returns the HTTP status code for an error
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsDuplicateKeyError checks if an error is a PostgreSQL unique_violation
func IsDuplicateKeyError(err error) bool {
	return IsUniqueViolation(err, "")
}

// IsUniqueViolation checks if an error is a unique violation of the named
// constraint. An empty name matches any unique constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == constants.PGErrorDuplicateConstraint && strings.Contains(pqErr.Constraint, constraintName)
}
