// File: confmux/typed.go
package confmux

import (
	"strconv"
	"strings"
)

// Int64 fetches the raw string for name and parses it as a signed integer
// with an optional unit suffix: k/K scale by 1024, m/M by 1024², g/G by
// 1024³. Any other trailing character is an ErrInvalidType failure. A
// failed raw read propagates with its original category.
func (s *Store) Int64(name string) (int64, error) {
	value, err := s.String(name)
	if err != nil {
		return 0, annotate(err, "failed to get value for %q", name)
	}
	return parseInt64(name, value)
}

// Int is Int64 narrowed to 32 bits by truncation. The truncation is silent;
// callers that care about the full range should use Int64.
func (s *Store) Int(name string) (int, error) {
	value, err := s.Int64(name)
	if err != nil {
		return 0, err
	}
	return int(int32(value)), nil
}

// Bool fetches the raw string for name and coerces it to a boolean.
// true/yes/on and false/no/off are recognized case-insensitively; anything
// else is retried as an integer, with nonzero meaning true. A string that
// is neither is an ErrInvalidType failure.
func (s *Store) Bool(name string) (bool, error) {
	value, err := s.String(name)
	if err != nil {
		return false, annotate(err, "failed to get value for %q", name)
	}
	return parseBool(name, value)
}

// SetInt64 formats value as a plain decimal string (no suffix is ever
// emitted) and writes it to the highest-priority backend.
func (s *Store) SetInt64(name string, value int64) error {
	return s.SetString(name, strconv.FormatInt(value, 10))
}

// SetInt formats and writes value like SetInt64.
func (s *Store) SetInt(name string, value int) error {
	return s.SetInt64(name, int64(value))
}

// SetBool writes the literal string "true" or "false".
func (s *Store) SetBool(name string, value bool) error {
	return s.SetString(name, strconv.FormatBool(value))
}

// EnvBool reads name through lookup (typically os.LookupEnv) and coerces
// the result to a boolean. A missing entry is an ErrNotFound failure. An
// entry that is present but empty is true: the flag is set, it just
// carries no value. Non-empty values parse like Bool.
//
// The environment is an explicit parameter so the coercion stays pure and
// testable; nothing here touches process-wide state.
func EnvBool(lookup LookupFunc, name string) (bool, error) {
	value, exists := lookup(name)
	if !exists {
		return false, failf(ErrNotFound, "environment variable %s is not set", name)
	}
	if value == "" {
		return true, nil
	}
	return parseBool(name, value)
}

// parseInt64 applies the unit-suffix integer grammar shared by Int64 and
// the boolean integer fallback.
func parseInt64(name, value string) (int64, error) {
	num := value
	var scale int64 = 1

	if len(num) > 0 {
		switch num[len(num)-1] {
		case 'k', 'K':
			scale = 1024
			num = num[:len(num)-1]
		case 'm', 'M':
			scale = 1024 * 1024
			num = num[:len(num)-1]
		case 'g', 'G':
			scale = 1024 * 1024 * 1024
			num = num[:len(num)-1]
		}
	}

	parsed, err := strconv.ParseInt(num, 0, 64)
	if err != nil {
		return 0, failf(ErrInvalidType, "failed to get value for %q: %q is not an integer", name, value)
	}

	return parsed * scale, nil
}

// parseBool implements the lenient boolean grammar: keyword first, integer
// fallback second.
func parseBool(name, value string) (bool, error) {
	switch {
	case strings.EqualFold(value, "true"),
		strings.EqualFold(value, "yes"),
		strings.EqualFold(value, "on"):
		return true, nil
	case strings.EqualFold(value, "false"),
		strings.EqualFold(value, "no"),
		strings.EqualFold(value, "off"):
		return false, nil
	}

	parsed, err := parseInt64(name, value)
	if err != nil {
		return false, annotate(err, "failed to get boolean value for %q", name)
	}
	return parsed != 0, nil
}
