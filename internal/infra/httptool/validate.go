package httptool

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationResult reports which required fields an API response is
// missing. It is a data answer, not an error: absent fields are an
// expected outcome for the caller to branch on.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	MissingFields []string `json:"missing_fields"`
	Errors        []string `json:"errors"`
}

// ValidateResponse checks that every required field is present in the
// response. Dotted names traverse nested objects and numeric segments index
// arrays: "weather.0.description" requires a "weather" list whose first
// element has "description".
func ValidateResponse(data any, requiredFields []string) ValidationResult {
	result := ValidationResult{
		Valid:         true,
		MissingFields: []string{},
		Errors:        []string{},
	}

	object, ok := data.(map[string]any)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("expected object, got %T", data))
		return result
	}

	for _, field := range requiredFields {
		if !hasField(object, field) {
			result.MissingFields = append(result.MissingFields, field)
		}
	}
	if len(result.MissingFields) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("missing required fields: %s", strings.Join(result.MissingFields, ", ")))
	}
	return result
}

func hasField(object map[string]any, field string) bool {
	var current any = object
	for _, part := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[part]
			if !ok {
				return false
			}
			current = value
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			current = node[index]
		default:
			return false
		}
	}
	return true
}
