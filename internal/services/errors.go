package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/fremontasb/fremont-api/internal/access"
	"gorm.io/gorm"
)

var (
	// ErrPermissionDenied is returned for writes the requester may not perform.
	ErrPermissionDenied = access.ErrPermissionDenied
	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("resource already exists")
)

// ValidationError carries field-level validation messages keyed by JSON field name.
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

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
