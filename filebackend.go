// File: confmux/filebackend.go
package confmux

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileBackend is an on-disk Backend holding the flattened key/value view of
// one TOML, JSON or YAML file. Nested tables become dot-joined names.
// Writes are persisted immediately with an atomic temp-file-and-rename.
type FileBackend struct {
	path   string
	format string // toml, json or yaml; detected at Open if empty

	mutex  sync.RWMutex
	values map[string]any
	keys   []string // sorted; defines iteration order

	store *Store // weak back-reference to the owning store
}

// NewFileBackend creates a backend for the file at path. The format is
// detected from the extension, falling back to content sniffing at Open.
// The backend holds no data until Open is called.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path:   path,
		values: make(map[string]any),
	}
}

// Path returns the backend's file location.
func (f *FileBackend) Path() string { return f.path }

// Store returns the store this backend was registered into, or nil. The
// reference is non-owning; it never extends or ends the store's lifetime.
func (f *FileBackend) Store() *Store {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.store
}

// Bind records the owning store. Called once by Store.Register.
func (f *FileBackend) Bind(s *Store) {
	f.mutex.Lock()
	f.store = s
	f.mutex.Unlock()
}

// Open reads and parses the backing file. A file that does not exist yet is
// not an error: the backend opens empty and the file is created on the
// first Set.
func (f *FileBackend) Open() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return annotate(err, "failed to read config file %q", f.path)
	}

	format := f.format
	if format == "" {
		format = detectFileFormat(f.path)
		if format == "" {
			format = detectFormatFromContent(data)
		}
		if format == "" {
			return failf(ErrInvalidType, "unable to determine config format for file %q", f.path)
		}
	}

	fileConfig := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &fileConfig); err != nil {
			return annotate(err, "failed to parse TOML config file %q", f.path)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&fileConfig); err != nil {
			return annotate(err, "failed to parse JSON config file %q", f.path)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return annotate(err, "failed to parse YAML config file %q", f.path)
		}
	default:
		return failf(ErrInvalidType, "unsupported config format %q for file %q", format, f.path)
	}

	values := flattenMap(fileConfig, "")
	keys := make([]string, 0, len(values))
	for name := range values {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	f.mutex.Lock()
	f.format = format
	f.values = values
	f.keys = keys
	f.mutex.Unlock()

	return nil
}

// Get returns the raw string value for name.
func (f *FileBackend) Get(name string) (string, error) {
	f.mutex.RLock()
	value, exists := f.values[name]
	f.mutex.RUnlock()

	if !exists {
		return "", failf(ErrNotFound, "variable %q not found in %q", name, f.path)
	}
	return formatValue(value), nil
}

// Set stores value under name and persists the whole backend atomically.
func (f *FileBackend) Set(name, value string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if _, exists := f.values[name]; !exists {
		i := sort.SearchStrings(f.keys, name)
		f.keys = append(f.keys, "")
		copy(f.keys[i+1:], f.keys[i:])
		f.keys[i] = name
	}
	f.values[name] = value

	if err := f.persist(); err != nil {
		return annotate(err, "failed to set value for %q", name)
	}
	return nil
}

// ForEach visits every key in sorted name order.
func (f *FileBackend) ForEach(fn VisitorFunc) error {
	f.mutex.RLock()
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	values := make(map[string]any, len(f.values))
	for name, value := range f.values {
		values[name] = value
	}
	f.mutex.RUnlock()

	for _, name := range keys {
		if err := fn(name, formatValue(values[name])); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the in-memory view. Any unflushed state was already
// persisted by Set, so nothing touches the disk here.
func (f *FileBackend) Close() error {
	f.mutex.Lock()
	f.values = nil
	f.keys = nil
	f.mutex.Unlock()
	return nil
}

// persist marshals the nested view and writes it atomically. Caller holds
// the write lock.
func (f *FileBackend) persist() error {
	nested := make(map[string]any)
	for name, value := range f.values {
		setNestedValue(nested, name, value)
	}

	format := f.format
	if format == "" {
		format = detectFileFormat(f.path)
		if format == "" {
			format = "toml"
		}
		f.format = format
	}

	var data []byte
	switch format {
	case "toml":
		var buf bytes.Buffer
		encoder := toml.NewEncoder(&buf)
		if err := encoder.Encode(nested); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
		data = buf.Bytes()
	case "json":
		encoded, err := json.MarshalIndent(nested, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		data = append(encoded, '\n')
	case "yaml":
		encoded, err := yaml.Marshal(nested)
		if err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		data = encoded
	}

	return atomicWriteFile(f.path, data)
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try TOML before YAML: YAML accepts nearly any scalar document
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
