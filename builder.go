// File: confmux/builder.go
package confmux

import (
	"fmt"
)

// ValidatorFunc defines the signature for a function that can validate a
// fully assembled Store. It runs at the end of Build and should return an
// error if validation fails.
type ValidatorFunc func(s *Store) error

// Builder provides a fluent interface for assembling layered stores.
type Builder struct {
	pending    []backendEntry
	validators []ValidatorFunc
	err        error
}

// NewBuilder creates a new store builder
func NewBuilder() *Builder {
	return &Builder{
		validators: make([]ValidatorFunc, 0),
	}
}

// WithBackend adds any Backend at the given priority. The backend is
// opened during Build.
func (b *Builder) WithBackend(backend Backend, priority int) *Builder {
	if backend == nil {
		b.err = fmt.Errorf("builder: nil backend at priority %d", priority)
		return b
	}
	b.pending = append(b.pending, backendEntry{backend: backend, priority: priority})
	return b
}

// WithFile adds a file backend for path at the given priority.
func (b *Builder) WithFile(path string, priority int) *Builder {
	return b.WithBackend(NewFileBackend(path), priority)
}

// WithGlobalFile adds a file backend for the named file in the caller's
// home directory. A missing HOME surfaces as an ErrLocation failure from
// Build.
func (b *Builder) WithGlobalFile(filename string, priority int) *Builder {
	path, err := GlobalPath(filename)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.WithFile(path, priority)
}

// WithDiscovery adds a file backend located through the discovery rules,
// if one is found. Not finding a file is not an error.
func (b *Builder) WithDiscovery(opts DiscoveryOptions, args []string, priority int) *Builder {
	if path, found := Discover(opts, args); found {
		return b.WithFile(path, priority)
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the
// build process. Multiple validators run in the order they were added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build assembles the Store: every pending backend is registered at its
// priority and opened. The first open failure closes the partially built
// store and is returned with context; validators run only after every
// backend opened cleanly.
func (b *Builder) Build() (*Store, error) {
	if b.err != nil {
		return nil, b.err
	}

	store := New()
	for _, entry := range b.pending {
		store.Register(entry.backend, entry.priority)
	}

	for _, entry := range b.pending {
		if err := entry.backend.Open(); err != nil {
			store.Close()
			return nil, annotate(err, "failed to open backend (priority %d)", entry.priority)
		}
	}

	for _, validator := range b.validators {
		if err := validator(store); err != nil {
			store.Close()
			return nil, fmt.Errorf("store validation failed: %w", err)
		}
	}

	return store, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Store {
	store, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("store build failed: %v", err))
	}
	return store
}
