package httptool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildURLJoinsSlashes(t *testing.T) {
	for _, tc := range []struct {
		base     string
		endpoint string
	}{
		{"https://api.example.com/v1", "data"},
		{"https://api.example.com/v1/", "data"},
		{"https://api.example.com/v1", "/data"},
		{"https://api.example.com/v1/", "/data"},
	} {
		got, err := BuildURL(tc.base, tc.endpoint, nil)
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/v1/data", got)
	}
}

func TestBuildURLEncodesParams(t *testing.T) {
	got, err := BuildURL("https://api.openweathermap.org/data/2.5", "weather", map[string]any{
		"q":     "london",
		"units": "metric",
		"appid": nil,
	})

	require.NoError(t, err)
	require.Equal(t, "https://api.openweathermap.org/data/2.5/weather?q=london&units=metric", got)
}

func TestBuildURLRendersNumbers(t *testing.T) {
	got, err := BuildURL("https://api.example.com", "data", map[string]any{
		"count": float64(3),
		"lat":   51.5074,
	})

	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/data?count=3&lat=51.5074", got)
}

func TestBuildURLRejectsRelative(t *testing.T) {
	_, err := BuildURL("api.example.com", "data", nil)
	require.Error(t, err)
}
