package httptool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateResponseAllPresent(t *testing.T) {
	data := map[string]any{
		"name": "London",
		"main": map[string]any{"temp": 12.5, "humidity": 80},
	}

	result := ValidateResponse(data, []string{"name", "main.temp", "main.humidity"})

	require.True(t, result.Valid)
	require.Empty(t, result.MissingFields)
	require.Empty(t, result.Errors)
}

func TestValidateResponseMissingFields(t *testing.T) {
	data := map[string]any{
		"main": map[string]any{"temp": 12.5},
	}

	result := ValidateResponse(data, []string{"name", "main.temp", "main.pressure"})

	require.False(t, result.Valid)
	require.Equal(t, []string{"name", "main.pressure"}, result.MissingFields)
	require.NotEmpty(t, result.Errors)
}

func TestValidateResponseArrayIndices(t *testing.T) {
	data := map[string]any{
		"weather": []any{
			map[string]any{"description": "light rain"},
		},
	}

	result := ValidateResponse(data, []string{"weather.0.description"})
	require.True(t, result.Valid)

	result = ValidateResponse(data, []string{"weather.1.description", "weather.x"})
	require.False(t, result.Valid)
	require.Equal(t, []string{"weather.1.description", "weather.x"}, result.MissingFields)
}

func TestValidateResponseNestedThroughScalar(t *testing.T) {
	data := map[string]any{"main": "not an object"}

	result := ValidateResponse(data, []string{"main.temp"})

	require.False(t, result.Valid)
	require.Equal(t, []string{"main.temp"}, result.MissingFields)
}

func TestValidateResponseNonObject(t *testing.T) {
	result := ValidateResponse([]any{1, 2}, []string{"name"})

	require.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}
