package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"atomd/internal/domain"
	"atomd/internal/infra/pipeline"
	"atomd/internal/infra/transform"
)

// Processing tools: AI completion and pure data transformation.
func registerProcessingTools(registry *pipeline.Registry, deps Dependencies) error {
	if deps.Completion != nil {
		if err := registry.Register(domain.ToolDescriptor{
			Name:        "ai_completion",
			Description: "Generate an AI completion for a prompt",
			InputSchema: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"prompt"},
				Properties: map[string]*jsonschema.Schema{
					"prompt":      {Type: "string"},
					"model":       {Type: "string", Description: "Override the configured model"},
					"max_tokens":  {Type: "integer"},
					"temperature": {Type: "number"},
				},
			},
			Retryable:   true,
			RateLimited: true,
		}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
			prompt, err := requiredString(args, "prompt")
			if err != nil {
				return nil, err
			}
			req := domain.CompletionRequest{
				Prompt:      prompt,
				Temperature: domain.DefaultAITemperature,
			}
			if model, ok := stringArg(args, "model"); ok {
				req.Model = model
			}
			if maxTokens, ok := intArg(args, "max_tokens"); ok {
				req.MaxTokens = maxTokens
			}
			if temperature, ok := numberArg(args, "temperature"); ok {
				req.Temperature = temperature
			}
			return deps.Completion.Complete(ctx, req)
		})); err != nil {
			return err
		}
	}

	if err := registry.Register(domain.ToolDescriptor{
		Name:        "format_data",
		Description: "Render a data object as text in a named style",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"data", "format_type"},
			Properties: map[string]*jsonschema.Schema{
				"data":        {Type: "object"},
				"format_type": {Type: "string", Description: "json, table, summary, detailed, weather_current, or custom with template"},
				"template":    {Type: "string", Description: "Custom template with {field} placeholders"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		data, ok := objectArg(args, "data")
		if !ok {
			return nil, invalidArg("data", "must be an object")
		}
		formatType, err := requiredString(args, "format_type")
		if err != nil {
			return nil, err
		}
		template, _ := stringArg(args, "template")

		formatted, err := transform.FormatData(data, formatType, template)
		if err != nil {
			return nil, domain.E(domain.CodeInvalidArgument, "invoke", "", err)
		}
		return formatted, nil
	})); err != nil {
		return err
	}

	if err := registry.Register(domain.ToolDescriptor{
		Name:        "extract_data_fields",
		Description: "Extract fields from nested data by dotted path, numeric segments index arrays",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"source_data", "field_mapping"},
			Properties: map[string]*jsonschema.Schema{
				"source_data":   {Type: "object"},
				"field_mapping": {Type: "object", Description: "new_name -> source.path"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		source, ok := objectArg(args, "source_data")
		if !ok {
			return nil, invalidArg("source_data", "must be an object")
		}
		mapping, err := stringMap(args, "field_mapping")
		if err != nil {
			return nil, err
		}
		return transform.ExtractFields(source, mapping), nil
	})); err != nil {
		return err
	}

	return registry.Register(domain.ToolDescriptor{
		Name:        "calculate_metrics",
		Description: "Evaluate named calculations over numeric fields of the input",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"input_data", "calculations"},
			Properties: map[string]*jsonschema.Schema{
				"input_data": {Type: "object"},
				"calculations": {
					Type: "array",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"name":      {Type: "string"},
							"operation": {Type: "string", Description: "subtract, add, average, max, or min"},
							"fields":    {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						},
					},
				},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		input, ok := objectArg(args, "input_data")
		if !ok {
			return nil, invalidArg("input_data", "must be an object")
		}
		rawCalcs, ok := listArg(args, "calculations")
		if !ok {
			return nil, invalidArg("calculations", "must be an array")
		}

		calculations := make([]transform.Calculation, 0, len(rawCalcs))
		for _, raw := range rawCalcs {
			encoded, err := json.Marshal(raw)
			if err != nil {
				return nil, invalidArg("calculations", "must be an array of calculation objects")
			}
			var calc transform.Calculation
			if err := json.Unmarshal(encoded, &calc); err != nil {
				return nil, invalidArg("calculations", "must be an array of calculation objects")
			}
			calculations = append(calculations, calc)
		}
		return transform.CalculateMetrics(input, calculations), nil
	}))
}
