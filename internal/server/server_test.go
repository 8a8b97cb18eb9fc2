package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"atomd/internal/domain"
	"atomd/internal/infra/cache"
	"atomd/internal/infra/pipeline"
	"atomd/internal/infra/policy"
	"atomd/internal/infra/ratelimit"
	"atomd/internal/infra/retry"
)

func newServerFixture(t *testing.T) *Server {
	t.Helper()
	registry := pipeline.NewRegistry()

	err := registry.Register(domain.ToolDescriptor{
		Name:        "shout",
		Description: "uppercase a message",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"message"},
			Properties: map[string]*jsonschema.Schema{
				"message": {Type: "string"},
			},
		},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		message, _ := args["message"].(string)
		return map[string]any{"echoed": message}, nil
	}))
	require.NoError(t, err)

	err = registry.Register(domain.ToolDescriptor{
		Name:        "fetch_page",
		Description: "fetch a page from an allowlisted host",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"url"},
			Properties: map[string]*jsonschema.Schema{
				"url": {Type: "string"},
			},
		},
		URLArgs: []string{"url"},
	}, domain.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
		return "page body", nil
	}))
	require.NoError(t, err)

	allowlists := domain.NewAllowlists(nil, []string{"api.example.com"}, nil)
	dispatcher := pipeline.NewDispatcher(pipeline.DispatcherOptions{
		Registry: registry,
		Gate:     policy.NewGate(allowlists, nil),
		Cache:    cache.NewStore(),
		Limiter:  ratelimit.NewLimiter(ratelimit.Options{Capacity: 100, RefillPerSecond: 1}),
		Retrier:  retry.NewExecutor(retry.Options{MaxAttempts: 2, BaseDelay: time.Millisecond}),
	})

	return New(Options{
		Registry:   registry,
		Dispatcher: dispatcher,
		Version:    "test",
	})
}

func connectClient(t *testing.T, ctx context.Context, srv *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := srv.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "test"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	return session
}

func TestListToolsExposesRegisteredDescriptors(t *testing.T) {
	ctx := context.Background()
	session := connectClient(t, ctx, newServerFixture(t).build())
	defer session.Close()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 2)
	require.Equal(t, "fetch_page", res.Tools[0].Name)
	require.Equal(t, "shout", res.Tools[1].Name)
}

func TestCallToolReturnsHandlerValue(t *testing.T) {
	ctx := context.Background()
	session := connectClient(t, ctx, newServerFixture(t).build())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "shout",
		Arguments: json.RawMessage(`{"message":"hello"}`),
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text := res.Content[0].(*mcp.TextContent).Text
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	require.Equal(t, map[string]any{"echoed": "hello"}, decoded)
}

func TestCallToolReportsPolicyDenialInBand(t *testing.T) {
	ctx := context.Background()
	session := connectClient(t, ctx, newServerFixture(t).build())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "fetch_page",
		Arguments: json.RawMessage(`{"url":"https://evil.example.com/x"}`),
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, res.Content[0].(*mcp.TextContent).Text, "POLICY_VIOLATION")
}

func TestCallToolReportsValidationFailureInBand(t *testing.T) {
	ctx := context.Background()
	session := connectClient(t, ctx, newServerFixture(t).build())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "shout",
		Arguments: json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, res.Content[0].(*mcp.TextContent).Text, "INVALID_ARGUMENT")
}

func TestRenderValuePassesStringsThrough(t *testing.T) {
	require.Equal(t, "plain", renderValue("plain"))
	require.Equal(t, "null", renderValue(nil))
	require.JSONEq(t, `{"a":1}`, renderValue(map[string]any{"a": 1}))
}
