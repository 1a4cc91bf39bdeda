package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict means the row's status changed since it was read.
	ErrStatusConflict = errors.New("status changed concurrently")
	// ErrGatewayNotReady is returned while no database connection exists.
	ErrGatewayNotReady = errors.New("database not available")
)

// ValidationError carries one message per offending field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
