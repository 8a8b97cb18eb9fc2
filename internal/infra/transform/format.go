package transform

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormatData renders a data object as text in one of the named styles.
// Unknown types with a template fall through to template substitution;
// otherwise a plain key-value rendering is used. Map iteration order is
// made deterministic by sorting keys.
func FormatData(data map[string]any, formatType, template string) (string, error) {
	switch formatType {
	case "json":
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("format json: %w", err)
		}
		return string(encoded), nil
	case "weather_current":
		return formatCurrentWeather(data), nil
	case "weather_forecast":
		return FormatForecast(forecastDays(data)), nil
	case "summary":
		return formatSummary(data), nil
	case "detailed":
		return formatDetailed(data), nil
	case "table":
		return formatTable(data), nil
	default:
		if template != "" {
			return formatWithTemplate(data, template), nil
		}
		return formatDefault(data), nil
	}
}

// FormatForecast renders a forecast day list.
func FormatForecast(days []map[string]any) string {
	if len(days) == 0 {
		return "No forecast data available"
	}
	var sb strings.Builder
	sb.WriteString("5-day weather forecast:\n")
	for _, day := range days {
		sb.WriteString(fmt.Sprintf("\n%s: %s°/%s° - %s",
			stringOr(day, "date", "Unknown"),
			stringOr(day, "temp_high", "N/A"),
			stringOr(day, "temp_low", "N/A"),
			stringOr(day, "description", "N/A"),
		))
	}
	return sb.String()
}

// forecastDays pulls the day list out of a forecast payload. Entries that
// are not objects are skipped rather than failing the render.
func forecastDays(data map[string]any) []map[string]any {
	raw, ok := data["days"].([]any)
	if !ok {
		return nil
	}
	days := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if day, ok := item.(map[string]any); ok {
			days = append(days, day)
		}
	}
	return days
}

func formatCurrentWeather(data map[string]any) string {
	return fmt.Sprintf(`Current weather in %s:
Temperature: %s°C
Condition: %s
Humidity: %s%%
Wind: %s m/s`,
		stringOr(data, "location", "Unknown"),
		stringOr(data, "temp", "N/A"),
		stringOr(data, "description", "N/A"),
		stringOr(data, "humidity", "N/A"),
		stringOr(data, "wind_speed", "N/A"),
	)
}

func formatSummary(data map[string]any) string {
	items := make([]string, 0, len(data))
	for _, key := range sortedKeys(data) {
		switch data[key].(type) {
		case string, int, int64, float64, bool:
			items = append(items, fmt.Sprintf("%s: %v", key, data[key]))
		}
	}
	return strings.Join(items, "; ")
}

func formatDetailed(data map[string]any) string {
	var lines []string
	for _, key := range sortedKeys(data) {
		switch value := data[key].(type) {
		case map[string]any:
			lines = append(lines, titleWord(key)+":")
			for _, subKey := range sortedKeys(value) {
				lines = append(lines, fmt.Sprintf("  %s: %v", subKey, value[subKey]))
			}
		case []any:
			lines = append(lines, fmt.Sprintf("%s: %d items", titleWord(key), len(value)))
		default:
			lines = append(lines, fmt.Sprintf("%s: %v", titleWord(key), value))
		}
	}
	return strings.Join(lines, "\n")
}

func formatTable(data map[string]any) string {
	if len(data) == 0 {
		return "No data"
	}
	maxKeyLen := 0
	for key := range data {
		if len(key) > maxKeyLen {
			maxKeyLen = len(key)
		}
	}
	var lines []string
	for _, key := range sortedKeys(data) {
		lines = append(lines, fmt.Sprintf("%-*s | %v", maxKeyLen, key, data[key]))
	}
	return strings.Join(lines, "\n")
}

// formatWithTemplate substitutes {key} placeholders. A placeholder with no
// matching key renders an error marker instead of failing the whole call.
func formatWithTemplate(data map[string]any, template string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{"+key+"}", fmt.Sprintf("%v", value))
	}
	if start := strings.Index(result, "{"); start >= 0 {
		if end := strings.Index(result[start:], "}"); end > 0 {
			return fmt.Sprintf("Template error - missing key: %s", result[start+1:start+end])
		}
	}
	return result
}

func formatDefault(data map[string]any) string {
	lines := make([]string, 0, len(data))
	for _, key := range sortedKeys(data) {
		lines = append(lines, fmt.Sprintf("%s: %v", key, data[key]))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func stringOr(data map[string]any, key, fallback string) string {
	value, ok := data[key]
	if !ok || value == nil {
		return fallback
	}
	return fmt.Sprintf("%v", value)
}
