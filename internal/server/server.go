package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"atomd/internal/domain"
	"atomd/internal/infra/pipeline"
	"atomd/internal/infra/telemetry"
)

// Server exposes the registered tools over MCP. Every call routes through
// the dispatcher, so the transport never bypasses validation, policy,
// caching, or rate limiting.
type Server struct {
	registry   *pipeline.Registry
	dispatcher *pipeline.Dispatcher
	logger     *zap.Logger
	version    string
}

type Options struct {
	Registry   *pipeline.Registry
	Dispatcher *pipeline.Dispatcher
	Logger     *zap.Logger
	Version    string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = "0.0.0"
	}
	return &Server{
		registry:   opts.Registry,
		dispatcher: opts.Dispatcher,
		logger:     logger.Named("server"),
		version:    version,
	}
}

// Run serves over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	srv := s.build()
	s.logger.Info("mcp server starting (stdio transport)", zap.Int("tools", s.registry.Len()))
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) build() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "atomd",
		Version: s.version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	for _, descriptor := range s.registry.Descriptors() {
		schema := descriptor.InputSchema
		if schema == nil {
			schema = &jsonschema.Schema{Type: "object"}
		}
		srv.AddTool(&mcp.Tool{
			Name:        descriptor.Name,
			Description: descriptor.Description,
			InputSchema: schema,
		}, s.toolHandler(descriptor.Name))
	}
	return srv
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(domain.E(domain.CodeInvalidArgument, "decode arguments",
					fmt.Sprintf("%s: arguments must be a JSON object", name), err)), nil
			}
		}

		ctx, _ = telemetry.EnsureRequestMeta(ctx)
		result := s.dispatcher.Dispatch(ctx, domain.InvocationRequest{
			ToolName:  name,
			Arguments: args,
		})
		if result.Err != nil {
			return errorResult(result.Err), nil
		}
		return successResult(result), nil
	}
}

func successResult(result domain.ExecutionResult) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: renderValue(result.Value)},
		},
	}
}

// errorResult reports failures in-band so clients see the typed code
// instead of an opaque protocol error.
func errorResult(derr *domain.Error) *mcp.CallToolResult {
	structured := map[string]any{
		"code":    string(derr.Code),
		"message": derr.Error(),
	}
	if derr.Identifier != "" {
		structured["identifier"] = derr.Identifier
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: derr.Error()},
		},
		StructuredContent: structured,
	}
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	default:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
