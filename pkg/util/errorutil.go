package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports a rejected request payload; never retried.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewNotFound reports a missing resource.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewSchemaMissing reports that required tables are absent, distinct from a
// connection failure so operators can tell "not configured" from "down".
func NewSchemaMissing(missingTables []string) error {
	return &DomainError{
		Code:       "SCHEMA_MISSING",
		Message:    fmt.Sprintf("Database setup incomplete. Missing tables: %s. Please run the SQL setup scripts.", strings.Join(missingTables, ", ")),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"missing_tables": missingTables},
	}
}

// NewStoreConnectionError wraps a transport-level failure reaching the
// backing store, normalizing the message first.
func NewStoreConnectionError(err error) error {
	return &DomainError{
		Code:       "STORE_CONNECTION",
		Message:    NormalizeStoreMessage(err),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict reports a request that cannot proceed in the current state.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NormalizeStoreMessage turns known garbled driver symptoms into a clear
// instruction instead of leaking a raw parse error. A backend that answers
// with a plain-text body instead of the wire protocol shows up as a token
// parse failure, which really means the connection string is wrong.
func NormalizeStoreMessage(err error) string {
	if err == nil {
		return "Database connection failed"
	}
	msg := err.Error()
	if strings.Contains(msg, "Unexpected token") || strings.Contains(msg, "invalid response") {
		return "Invalid response from database – your DATABASE_URL is probably wrong (must be a Postgres connection URL)."
	}
	return fmt.Sprintf("Database connection failed – %s", msg)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
