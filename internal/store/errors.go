package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Store-level errors. Every implementation returns these (possibly
// wrapped) so callers can branch with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnreachable   = errors.New("backend unreachable")
)

// ValidationError lists the offending fields and a human-readable message
// for each.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports that an agent still has dependent listings.
type ConflictError struct {
	Message string
	Count   int
}

// NewAgentConflict builds the conflict returned when deleting an agent
// who still owns count listings.
func NewAgentConflict(count int) *ConflictError {
	return &ConflictError{
		Count:   count,
		Message: fmt.Sprintf("Cannot delete agent. They have %d active listings. Reassign listings first.", count),
	}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
