// File: confmux/open.go
package confmux

import (
	"os"
	"path/filepath"
)

// OpenFile builds a Store around a single file backend at priority 1 and
// opens it. The returned Store owns the backend; Close releases it.
func OpenFile(path string) (*Store, error) {
	store := New()
	backend := NewFileBackend(path)
	store.Register(backend, 1)

	if err := backend.Open(); err != nil {
		store.Close()
		return nil, annotate(err, "failed to open config file %q", path)
	}

	return store, nil
}

// GlobalPath resolves the per-user location of the named config file from
// the HOME environment variable. There is no retry or fallback search: a
// missing HOME is an ErrLocation failure.
func GlobalPath(filename string) (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", failf(ErrLocation, "failed to open global config file: cannot find $HOME variable")
	}
	return filepath.Join(home, filename), nil
}

// OpenGlobal opens the per-user config file with the given name (for
// example ".appconfig") from the caller's home directory.
func OpenGlobal(filename string) (*Store, error) {
	path, err := GlobalPath(filename)
	if err != nil {
		return nil, err
	}
	return OpenFile(path)
}
