package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate field value")
)

// FieldErrors maps a candidate field to the first rule it failed.
// An empty map means the candidate is valid.
type FieldErrors map[string]string

// Valid reports whether no field failed validation.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

func (fe FieldErrors) Error() string {
	return "validation failed: " + joinFields(fe)
}

// SchemaError is raised by a store when a document violates its schema,
// independently of request validation.
type SchemaError struct {
	Fields map[string]string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + joinFields(e.Fields)
}

func joinFields(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+m[k])
	}
	return strings.Join(parts, ", ")
}
