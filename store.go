// File: confmux/store.go
package confmux

import (
	"errors"
	"sort"
	"sync"
)

// backendEntry pairs one backend with its priority. Entries are owned
// exclusively by the Store that created them.
type backendEntry struct {
	backend  Backend
	priority int
}

// Store is an ordered collection of backends, kept sorted by descending
// priority. Raw reads and writes route to the highest-priority backend
// only; iteration walks every backend in priority order.
type Store struct {
	entries []backendEntry
	mutex   sync.RWMutex // Protects concurrent access
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Register wraps backend in a new entry at the given priority and re-sorts
// the sequence. Higher priorities win; equal priorities keep registration
// order. If the backend implements StoreBinder it receives a non-owning
// reference to this Store.
//
// A nil backend is a programming error and panics. Registered backends are
// owned by the Store from this point on and are released by Close; there is
// no unregister operation.
func (s *Store) Register(backend Backend, priority int) {
	if backend == nil {
		panic("confmux: Register called with nil backend")
	}

	s.mutex.Lock()
	s.entries = append(s.entries, backendEntry{backend: backend, priority: priority})
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].priority > s.entries[j].priority
	})
	s.mutex.Unlock()

	if binder, ok := backend.(StoreBinder); ok {
		binder.Bind(s)
	}
}

// Len reports the number of registered backends.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Close releases every registered backend exactly once, then empties the
// Store. Individual close failures do not stop the remaining backends from
// being released; all failures are joined into the returned error.
// Close must not be called twice.
func (s *Store) Close() error {
	s.mutex.Lock()
	entries := s.entries
	s.entries = nil
	s.mutex.Unlock()

	var closeErrors []error
	for _, entry := range entries {
		if err := entry.backend.Close(); err != nil {
			closeErrors = append(closeErrors, annotate(err, "close backend (priority %d)", entry.priority))
		}
	}

	return errors.Join(closeErrors...)
}

// top returns the highest-priority backend, or an ErrNoBackends failure on
// an empty Store.
func (s *Store) top() (Backend, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.entries) == 0 {
		return nil, failf(ErrNoBackends, "store is empty")
	}
	return s.entries[0].backend, nil
}

// String returns the raw string value for name from the highest-priority
// backend. There is no fallthrough: a name missing from the top backend is
// a not-found failure even if a lower-priority backend holds it.
func (s *Store) String(name string) (string, error) {
	backend, err := s.top()
	if err != nil {
		return "", annotate(err, "cannot get value for %q", name)
	}
	return backend.Get(name)
}

// SetString writes value under name in the highest-priority backend.
func (s *Store) SetString(name, value string) error {
	backend, err := s.top()
	if err != nil {
		return annotate(err, "cannot set value for %q", name)
	}
	return backend.Set(name, value)
}

// ForEach visits every key of every backend in priority order (highest
// first), handing each name/value pair to fn. Iteration stops at the first
// backend or visitor failure, which propagates unchanged; backends after
// the failing one are never visited. Keys duplicated across backends are
// not deduplicated. An empty Store completes successfully.
func (s *Store) ForEach(fn VisitorFunc) error {
	s.mutex.RLock()
	entries := make([]backendEntry, len(s.entries))
	copy(entries, s.entries)
	s.mutex.RUnlock()

	for _, entry := range entries {
		if err := entry.backend.ForEach(fn); err != nil {
			return err
		}
	}
	return nil
}
