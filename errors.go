// File: confmux/errors.go
package confmux

import (
	"errors"
	"fmt"
	"strings"
)

// Failure categories. Every error returned by this package wraps exactly one
// of these (or an opaque backend error), so callers can branch with
// errors.Is regardless of how much context has accumulated on the way out.
var (
	// ErrNoBackends indicates an operation on a Store with zero registered
	// backends.
	ErrNoBackends = errors.New("no backends registered")

	// ErrNotFound indicates the requested name is absent from the targeted
	// backend, or the requested environment variable is unset.
	ErrNotFound = errors.New("value not found")

	// ErrInvalidType indicates a value was found but could not be coerced to
	// the requested type.
	ErrInvalidType = errors.New("value is of invalid type")

	// ErrLocation indicates an external file location needed to open a
	// backend could not be resolved.
	ErrLocation = errors.New("cannot resolve configuration location")
)

// Error is the structured error type used throughout the package. It pairs
// a failure category with the ordered trail of context added as the failure
// propagated outward. The category is fixed at the failure site and never
// changes; propagation only prepends context.
type Error struct {
	category error    // sentinel category or opaque backend error
	trail    []string // outermost context first
}

// Error renders the context trail followed by the category.
func (e *Error) Error() string {
	if len(e.trail) == 0 {
		return e.category.Error()
	}
	return strings.Join(e.trail, ": ") + ": " + e.category.Error()
}

// Unwrap exposes the category so errors.Is and errors.As see through the
// accumulated context.
func (e *Error) Unwrap() error { return e.category }

// Trail returns a copy of the context entries, outermost first.
func (e *Error) Trail() []string {
	out := make([]string, len(e.trail))
	copy(out, e.trail)
	return out
}

// failf creates a new Error with the given category and one initial context
// entry.
func failf(category error, format string, args ...any) error {
	return &Error{
		category: category,
		trail:    []string{fmt.Sprintf(format, args...)},
	}
}

// annotate prepends one context entry to err, preserving its category. An
// err that is not a *Error becomes the category of a new Error, so backend
// errors travel outward opaque but contextualized.
func annotate(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var ce *Error
	if errors.As(err, &ce) {
		return &Error{
			category: ce.category,
			trail:    append([]string{msg}, ce.trail...),
		}
	}
	return &Error{category: err, trail: []string{msg}}
}
