// File: confmux/decode.go
package confmux

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the merged view of every backend under basePath into the
// target struct or map. The merge is read-only and first-wins: because the
// walk runs in priority order, the highest-priority backend holding a key
// supplies its value. The target must be a non-nil pointer.
//
// Raw values are strings; mapstructure's weak typing plus duration and
// comma-slice hooks handle conversion into the target's field types.
func (s *Store) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}

	flat := make(map[string]string)
	err := s.ForEach(func(name, value string) error {
		if _, seen := flat[name]; !seen {
			flat[name] = value
		}
		return nil
	})
	if err != nil {
		return annotate(err, "failed to collect values for scan")
	}

	nested := make(map[string]any)
	for name, value := range flat {
		setNestedValue(nested, name, value)
	}

	var sectionData any = nested

	if basePath != "" {
		basePath = strings.TrimSuffix(basePath, ".")
		segments := strings.Split(basePath, ".")
		current := any(nested)
		found := true

		for _, segment := range segments {
			currentMap, ok := current.(map[string]any)
			if !ok {
				found = false
				break
			}
			value, exists := currentMap[segment]
			if !exists {
				found = false
				break
			}
			current = value
		}

		if !found {
			// Decode an empty map so absent sections leave the target as-is.
			sectionData = make(map[string]any)
		} else {
			sectionData = current
		}
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("configuration path %q does not refer to a scannable section (map), but to type %T", basePath, sectionData)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("failed to scan section %q into %T: %w", basePath, target, err)
	}

	return nil
}
