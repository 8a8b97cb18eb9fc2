package httptool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"atomd/internal/domain"
)

// Client performs outbound HTTP calls and classifies every failure into
// the transient/permanent taxonomy: network errors, 429 and 5xx are worth
// retrying, any other 4xx is not. Domain allowlisting happens in the
// pipeline before a request ever reaches here.
type Client struct {
	http   *http.Client
	logger *zap.Logger
}

type Request struct {
	URL     string
	Method  string
	Params  map[string]any
	Headers map[string]string
}

type Response struct {
	Status  int            `json:"status"`
	Data    any            `json:"data"`
	Headers map[string]string `json:"headers"`
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultHTTPTimeoutSeconds * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger.Named("http"),
	}
}

// Do sends the request. GET encodes params into the query string; every
// other method sends them as a JSON body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := c.buildRequest(ctx, method, req)
	if err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "http request", "", err)
	}

	c.logger.Debug("outbound request", zap.String("method", method), zap.String("url", req.URL))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.Transient("http request", fmt.Sprintf("%s %s failed", method, req.URL), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, domain.Transient("http request", "read response body", err)
	}

	if derr := classifyStatus(method, req.URL, resp.StatusCode); derr != nil {
		return nil, derr
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		data = map[string]any{"text": string(body)}
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return &Response{
		Status:  resp.StatusCode,
		Data:    data,
		Headers: headers,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	target := req.URL
	var body io.Reader

	if method == http.MethodGet {
		if len(req.Params) > 0 {
			withParams, err := BuildURL(target, "", req.Params)
			if err != nil {
				return nil, err
			}
			target = withParams
		}
	} else if req.Params != nil {
		encoded, err := json.Marshal(req.Params)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, nil
}

// classifyStatus maps HTTP status codes onto the retry taxonomy. 429 and
// 5xx may clear up; other 4xx will fail identically on every attempt.
func classifyStatus(method, url string, status int) *domain.Error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusTooManyRequests || status >= 500:
		return domain.Transient("http request",
			fmt.Sprintf("%s %s returned %d", method, url, status), nil)
	default:
		return domain.Permanent("http request",
			fmt.Sprintf("%s %s returned %d", method, url, status), nil)
	}
}
