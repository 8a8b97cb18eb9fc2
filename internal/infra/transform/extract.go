package transform

import (
	"strconv"
	"strings"
)

// ExtractFields maps dotted source paths onto new field names. Numeric
// path segments index into arrays: "weather.0.description" reads the
// first element of the "weather" array. A path that cannot be resolved
// yields nil for that field rather than failing the extraction.
func ExtractFields(source map[string]any, fieldMapping map[string]string) map[string]any {
	extracted := make(map[string]any, len(fieldMapping))
	for newField, sourcePath := range fieldMapping {
		value, ok := resolvePath(source, sourcePath)
		if !ok {
			extracted[newField] = nil
			continue
		}
		extracted[newField] = value
	}
	return extracted
}

func resolvePath(source map[string]any, path string) (any, bool) {
	var current any = source
	for _, part := range strings.Split(path, ".") {
		if index, err := strconv.Atoi(part); err == nil {
			list, ok := current.([]any)
			if !ok || index < 0 || index >= len(list) {
				return nil, false
			}
			current = list[index]
			continue
		}
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = object[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
