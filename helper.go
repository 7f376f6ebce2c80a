// File: confmux/helper.go
package confmux

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// flattenMap converts a nested map[string]any to a flat map with
// dot-joined names. The Store treats the joined names as opaque strings;
// only the file formats are nested.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap {
			for subName, subValue := range flattenMap(nestedMap, name) {
				flat[subName] = subValue
			}
		} else {
			flat[name] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-joined name,
// creating intermediate maps as needed. A segment that exists but is not a
// map is overwritten by a new map.
func setNestedValue(nested map[string]any, name string, value any) {
	segments := strings.Split(name, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		if next, exists := current[segment]; exists {
			if nextMap, isMap := next.(map[string]any); isMap {
				current = nextMap
				continue
			}
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// formatValue renders a decoded file value as the raw string the Store
// hands out. Conversions cover the leaf types the supported formats
// produce.
func formatValue(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(value).Float(), 'f', -1, 64)
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(value).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(value).Uint(), 10)
	default:
		return fmt.Sprintf("%v", value)
	}
}
