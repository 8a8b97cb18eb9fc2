package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"atomd/internal/domain"
	"atomd/internal/infra/httptool"
	"atomd/internal/infra/pipeline"
)

// HTTP tools: outbound requests, URL construction, response validation.
// Only http_request touches the network; the other two are pure and need
// no policy or rate limiting.
func registerHTTPTools(registry *pipeline.Registry, deps Dependencies) error {
	if deps.HTTP != nil {
		if err := registry.Register(domain.ToolDescriptor{
			Name:        "http_request",
			Description: "Perform an HTTP request against an allowlisted domain",
			InputSchema: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"url"},
				Properties: map[string]*jsonschema.Schema{
					"url":     {Type: "string", Description: "Target URL; its host must be allowlisted"},
					"method":  {Type: "string", Description: "HTTP method, default GET"},
					"params":  {Type: "object", Description: "Query parameters for GET, JSON body otherwise"},
					"headers": {Type: "object"},
				},
			},
			URLArgs:     []string{"url"},
			Retryable:   true,
			RateLimited: true,
		}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
			url, err := requiredString(args, "url")
			if err != nil {
				return nil, err
			}
			method, _ := stringArg(args, "method")
			params, _ := objectArg(args, "params")

			var headers map[string]string
			if _, ok := args["headers"]; ok {
				headers, err = stringMap(args, "headers")
				if err != nil {
					return nil, err
				}
			}

			return deps.HTTP.Do(ctx, httptool.Request{
				URL:     url,
				Method:  method,
				Params:  params,
				Headers: headers,
			})
		})); err != nil {
			return err
		}
	}

	if err := registry.Register(domain.ToolDescriptor{
		Name:        "build_api_url",
		Description: "Join a base URL, endpoint path, and query parameters",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"base_url", "endpoint"},
			Properties: map[string]*jsonschema.Schema{
				"base_url": {Type: "string"},
				"endpoint": {Type: "string"},
				"params":   {Type: "object"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		baseURL, err := requiredString(args, "base_url")
		if err != nil {
			return nil, err
		}
		endpoint, ok := stringArg(args, "endpoint")
		if !ok {
			return nil, invalidArg("endpoint", "must be a string")
		}
		params, _ := objectArg(args, "params")

		url, err := httptool.BuildURL(baseURL, endpoint, params)
		if err != nil {
			return nil, domain.E(domain.CodeInvalidArgument, "invoke", "", err)
		}
		return url, nil
	})); err != nil {
		return err
	}

	return registry.Register(domain.ToolDescriptor{
		Name:        "validate_api_response",
		Description: "Check an API response for required fields, dotted paths traverse nesting",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"response_data", "required_fields"},
			Properties: map[string]*jsonschema.Schema{
				"response_data":   {Type: "object"},
				"required_fields": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		fields, err := stringList(args, "required_fields")
		if err != nil {
			return nil, err
		}
		return httptool.ValidateResponse(args["response_data"], fields), nil
	}))
}
