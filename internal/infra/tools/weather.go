package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"atomd/internal/domain"
	"atomd/internal/infra/pipeline"
	"atomd/internal/infra/weather"
)

// Weather domain tools. All pure computation; composing them with
// http_request and ai_completion is the caller's job.
func registerWeatherTools(registry *pipeline.Registry, deps Dependencies) error {
	if err := registry.Register(domain.ToolDescriptor{
		Name:        "parse_coordinates",
		Description: "Resolve a location string to coordinates; accepts lat,lon or city names",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"location"},
			Properties: map[string]*jsonschema.Schema{
				"location": {Type: "string"},
			},
		},
		Cacheable: true,
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		location, err := requiredString(args, "location")
		if err != nil {
			return nil, err
		}
		coords, err := weather.ParseCoordinates(location)
		if err != nil {
			return nil, domain.E(domain.CodeInvalidArgument, "invoke", "", err)
		}
		return coords, nil
	})); err != nil {
		return err
	}

	if err := registry.Register(domain.ToolDescriptor{
		Name:        "calculate_weather_metrics",
		Description: "Derive heat index, wind chill, comfort level, and wind direction",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"temperature", "humidity", "wind_speed"},
			Properties: map[string]*jsonschema.Schema{
				"temperature":    {Type: "number", Description: "Celsius"},
				"humidity":       {Type: "integer", Description: "Percent"},
				"wind_speed":     {Type: "number", Description: "m/s"},
				"wind_direction": {Type: "integer", Description: "Degrees"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		temperature, ok := numberArg(args, "temperature")
		if !ok {
			return nil, invalidArg("temperature", "must be a number")
		}
		humidity, ok := intArg(args, "humidity")
		if !ok {
			return nil, invalidArg("humidity", "must be an integer")
		}
		windSpeed, ok := numberArg(args, "wind_speed")
		if !ok {
			return nil, invalidArg("wind_speed", "must be a number")
		}
		var windDirection *int
		if direction, ok := intArg(args, "wind_direction"); ok {
			windDirection = &direction
		}

		metrics, err := weather.CalculateMetrics(temperature, humidity, windSpeed, windDirection)
		if err != nil {
			return nil, domain.E(domain.CodeInvalidArgument, "invoke", "", err)
		}
		return metrics, nil
	})); err != nil {
		return err
	}

	if err := registry.Register(domain.ToolDescriptor{
		Name:        "generate_weather_prompt",
		Description: "Build an AI analysis prompt from weather conditions",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"current_weather"},
			Properties: map[string]*jsonschema.Schema{
				"current_weather": {Type: "object"},
				"forecast_data":   {Type: "array"},
				"insight_type":    {Type: "string", Description: "general, clothing, activities, travel, or health"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		current, ok := objectArg(args, "current_weather")
		if !ok {
			return nil, invalidArg("current_weather", "must be an object")
		}
		forecast, _ := listArg(args, "forecast_data")
		insightType, ok := stringArg(args, "insight_type")
		if !ok || insightType == "" {
			insightType = weather.InsightGeneral
		}
		return weather.GeneratePrompt(current, forecast, insightType), nil
	})); err != nil {
		return err
	}

	return registry.Register(domain.ToolDescriptor{
		Name:        "validate_location",
		Description: "Validate and standardize a user-supplied location string",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"location"},
			Properties: map[string]*jsonschema.Schema{
				"location": {Type: "string"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		location, ok := stringArg(args, "location")
		if !ok {
			return nil, invalidArg("location", "must be a string")
		}
		return weather.ValidateLocation(location), nil
	}))
}
