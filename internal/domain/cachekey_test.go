package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheKeyDeterministic(t *testing.T) {
	args := map[string]any{
		"url":    "https://api.openweathermap.org/data/2.5/weather",
		"method": "GET",
		"params": map[string]any{"q": "London", "units": "metric"},
	}
	same := map[string]any{
		"params": map[string]any{"units": "metric", "q": "London"},
		"method": "GET",
		"url":    "https://api.openweathermap.org/data/2.5/weather",
	}

	k1, err := CacheKey("http_request", args)
	require.NoError(t, err)
	k2, err := CacheKey("http_request", same)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
}

func TestCacheKeyDistinguishesToolAndArgs(t *testing.T) {
	args := map[string]any{"q": "London"}

	k1, err := CacheKey("http_request", args)
	require.NoError(t, err)
	k2, err := CacheKey("get_secret", args)
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)

	k3, err := CacheKey("http_request", map[string]any{"q": "Paris"})
	require.NoError(t, err)
	require.NotEqual(t, k1, k3)
}

func TestCacheKeyRejectsUnencodableArguments(t *testing.T) {
	_, err := CacheKey("bad", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
