package httptool

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildURL joins a base URL with an endpoint path and appends the query
// parameters. Nil parameter values are dropped; slash handling is
// normalized so "https://api.example.com/v1" + "/data" and
// "https://api.example.com/v1/" + "data" produce the same URL.
func BuildURL(baseURL, endpoint string, params map[string]any) (string, error) {
	full := strings.TrimRight(baseURL, "/")
	if trimmed := strings.TrimLeft(endpoint, "/"); trimmed != "" {
		full = full + "/" + trimmed
	}

	parsed, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	if parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("build url: %q is not an absolute http(s) URL", full)
	}

	query := parsed.Query()
	for key, value := range params {
		if value == nil {
			continue
		}
		query.Set(key, paramString(value))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func paramString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing ".0" so query strings stay stable.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
