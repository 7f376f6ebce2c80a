// File: confmux/backend.go
package confmux

// VisitorFunc is called once per key during iteration. Caller state is
// carried by closure capture. A non-nil return stops the iteration and
// propagates to the caller unchanged.
type VisitorFunc func(name, value string) error

// LookupFunc supplies a single named value from some environment, reporting
// whether the name was present at all. os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// Backend is the contract every configuration source must satisfy to be
// registered into a Store.
type Backend interface {
	// Open prepares the backend for use, typically loading and parsing its
	// source. Called by the helpers in open.go and by Builder.Build; a
	// backend registered directly must be opened by the caller.
	Open() error

	// Get returns the raw string value for name. Absent names report an
	// error wrapping ErrNotFound.
	Get(name string) (string, error)

	// Set persists value under name.
	Set(name, value string) error

	// ForEach invokes fn for every key the backend holds, in the backend's
	// own order, stopping on the first non-nil return.
	ForEach(fn VisitorFunc) error

	// Close releases all resources owned by the backend. The owning Store
	// calls it exactly once during Store.Close.
	Close() error
}

// StoreBinder is implemented by backends that want a reference back to the
// store that owns them. The reference is non-owning: it is set once at
// registration and must never be used to manage the store's lifetime.
type StoreBinder interface {
	Bind(*Store)
}
