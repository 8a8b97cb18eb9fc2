package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CacheKey derives the cache key for an invocation: the tool name joined
// with a SHA-256 digest of the JSON encoding of the arguments. Go's JSON
// encoder writes map keys in sorted order at every nesting level, so the
// encoding is canonical for the map-shaped argument trees the dispatcher
// receives, and equal arguments always produce equal keys.
func CacheKey(tool string, args map[string]any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode cache key arguments: %w", err)
	}
	sum := sha256.Sum256(data)
	return tool + ":" + hex.EncodeToString(sum[:]), nil
}
