package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/shashiranjanraj/kproduct/app/repositories"
)

var (
	// ErrIDAlreadyExists rejects a create whose body already carries an id.
	ErrIDAlreadyExists = errors.New("a new entity cannot already have an ID")
	// ErrIDMissing rejects an update whose body carries no id.
	ErrIDMissing = errors.New("invalid id")
	// ErrNotFound is returned when an update targets an id that does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrReferenced rejects a delete that would leave dangling references.
	ErrReferenced = errors.New("entity is still referenced")
)

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// outcome classifies err for the entity operations metric.
func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrReferenced):
		return "conflict"
	default:
		return "error"
	}
}
