// Package clinicerr defines the error kinds the handlers translate into
// structured HTTP responses: validation, conflict, state, authorization and
// not-found failures. Anything else is treated as an internal error.
package clinicerr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries per-field messages for malformed or out-of-range
// input. The zero value is not useful; construct it with Validation.
type ValidationError struct {
	Fields map[string]string
}

// Validation builds a single-field validation error.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for a field, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports a duplicate where uniqueness is required, such as a
// second booking for the same staff/date/session slot.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// StateError reports an operation applied to an entity whose current state
// forbids it, such as a second status change on a schedule.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func State(message string) *StateError {
	return &StateError{Message: message}
}

// AuthorizationError reports a role or identity mismatch.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func Unauthorized(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}
