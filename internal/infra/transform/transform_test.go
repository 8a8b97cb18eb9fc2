package transform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDataJSON(t *testing.T) {
	out, err := FormatData(map[string]any{"temp": 12.5}, "json", "")
	require.NoError(t, err)
	require.Contains(t, out, `"temp": 12.5`)
}

func TestFormatDataCurrentWeather(t *testing.T) {
	out, err := FormatData(map[string]any{
		"location":    "London",
		"temp":        12.5,
		"description": "light rain",
		"humidity":    80,
		"wind_speed":  4.2,
	}, "weather_current", "")

	require.NoError(t, err)
	require.Contains(t, out, "Current weather in London:")
	require.Contains(t, out, "Temperature: 12.5°C")
	require.Contains(t, out, "Humidity: 80%")
}

func TestFormatDataCurrentWeatherMissingFields(t *testing.T) {
	out, err := FormatData(map[string]any{}, "weather_current", "")
	require.NoError(t, err)
	require.Contains(t, out, "Current weather in Unknown:")
	require.Contains(t, out, "Temperature: N/A°C")
}

func TestFormatDataSummarySkipsComposites(t *testing.T) {
	out, err := FormatData(map[string]any{
		"city":   "London",
		"temp":   12.5,
		"nested": map[string]any{"skip": true},
	}, "summary", "")

	require.NoError(t, err)
	require.Equal(t, "city: London; temp: 12.5", out)
}

func TestFormatDataDetailed(t *testing.T) {
	out, err := FormatData(map[string]any{
		"main": map[string]any{"temp": 12.5},
		"list": []any{1, 2, 3},
		"name": "London",
	}, "detailed", "")

	require.NoError(t, err)
	require.Contains(t, out, "Main:")
	require.Contains(t, out, "  temp: 12.5")
	require.Contains(t, out, "List: 3 items")
	require.Contains(t, out, "Name: London")
}

func TestFormatDataTable(t *testing.T) {
	out, err := FormatData(map[string]any{"humidity": 80, "temp": 12.5}, "table", "")
	require.NoError(t, err)
	require.Equal(t, "humidity | 80\ntemp     | 12.5", out)

	out, err = FormatData(map[string]any{}, "table", "")
	require.NoError(t, err)
	require.Equal(t, "No data", out)
}

func TestFormatDataTemplate(t *testing.T) {
	out, err := FormatData(map[string]any{"city": "London", "temp": 12.5}, "custom", "{city}: {temp}C")
	require.NoError(t, err)
	require.Equal(t, "London: 12.5C", out)

	out, err = FormatData(map[string]any{"city": "London"}, "custom", "{city}: {temp}C")
	require.NoError(t, err)
	require.Contains(t, out, "missing key: temp")
}

func TestFormatForecast(t *testing.T) {
	out := FormatForecast([]map[string]any{
		{"date": "2026-08-28", "temp_high": 21, "temp_low": 14, "description": "cloudy"},
	})
	require.Contains(t, out, "5-day weather forecast:")
	require.Contains(t, out, "2026-08-28: 21°/14° - cloudy")

	require.Equal(t, "No forecast data available", FormatForecast(nil))
}

func TestFormatDataWeatherForecast(t *testing.T) {
	out, err := FormatData(map[string]any{
		"days": []any{
			map[string]any{"date": "2026-08-28", "temp_high": 21, "temp_low": 14, "description": "cloudy"},
			"not a day",
		},
	}, "weather_forecast", "")
	require.NoError(t, err)
	require.Contains(t, out, "2026-08-28: 21°/14° - cloudy")
}

func TestExtractFieldsNestedAndIndexed(t *testing.T) {
	source := map[string]any{
		"main": map[string]any{"temp": 12.5},
		"weather": []any{
			map[string]any{"description": "light rain"},
		},
	}

	extracted := ExtractFields(source, map[string]string{
		"temperature": "main.temp",
		"conditions":  "weather.0.description",
		"missing":     "main.pressure",
		"bad_index":   "weather.5.description",
	})

	require.Equal(t, 12.5, extracted["temperature"])
	require.Equal(t, "light rain", extracted["conditions"])
	require.Nil(t, extracted["missing"])
	require.Nil(t, extracted["bad_index"])
}

func TestCalculateMetricsOperations(t *testing.T) {
	input := map[string]any{"max_temp": 21.0, "min_temp": 14.0, "noon_temp": 19.0}

	results := CalculateMetrics(input, []Calculation{
		{Name: "range", Operation: "subtract", Fields: []string{"max_temp", "min_temp"}},
		{Name: "total", Operation: "add", Fields: []string{"max_temp", "min_temp"}},
		{Name: "mean", Operation: "average", Fields: []string{"max_temp", "min_temp", "noon_temp"}},
		{Name: "peak", Operation: "max", Fields: []string{"max_temp", "noon_temp"}},
		{Name: "floor", Operation: "min", Fields: []string{"max_temp", "noon_temp"}},
	})

	require.InDelta(t, 7.0, results["range"].(float64), 1e-9)
	require.InDelta(t, 35.0, results["total"].(float64), 1e-9)
	require.InDelta(t, 18.0, results["mean"].(float64), 1e-9)
	require.InDelta(t, 21.0, results["peak"].(float64), 1e-9)
	require.InDelta(t, 19.0, results["floor"].(float64), 1e-9)
}

func TestCalculateMetricsLenientInputs(t *testing.T) {
	input := map[string]any{"a": 5.0, "bad": "text"}

	results := CalculateMetrics(input, []Calculation{
		{Name: "with_absent", Operation: "add", Fields: []string{"a", "absent"}},
		{Name: "non_numeric", Operation: "add", Fields: []string{"a", "bad"}},
		{Name: "unknown_op", Operation: "multiply", Fields: []string{"a", "a"}},
		{Operation: "subtract", Fields: []string{"a"}},
	})

	require.InDelta(t, 5.0, results["with_absent"].(float64), 1e-9)
	require.Nil(t, results["non_numeric"])
	require.Nil(t, results["unknown_op"])
	require.Nil(t, results["unknown"])
}
