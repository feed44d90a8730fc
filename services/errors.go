package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the entity is absent, or absent for this viewer.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is produced by the ownership guard. Services report it as ErrNotFound.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated means a write was attempted without an acting identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError lists field level problems in submitted input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
