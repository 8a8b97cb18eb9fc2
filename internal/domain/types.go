package domain

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// Handler executes a single atomic tool. Implementations must honor ctx
// cancellation on any blocking work.
type Handler interface {
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

func (f HandlerFunc) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return f(ctx, args)
}

// ToolDescriptor declares a tool and which cross-cutting pipeline stages
// apply to it. Registered once at startup and immutable afterwards.
type ToolDescriptor struct {
	Name        string
	Description string

	// InputSchema validates arguments before any other stage runs.
	// Nil skips validation.
	InputSchema *jsonschema.Schema

	// SecretArgs and URLArgs name the argument keys whose values are
	// checked against the secret and domain allowlists. URLArgs values
	// are full URLs; their authority portion is what gets checked.
	SecretArgs []string
	URLArgs    []string

	Cacheable   bool
	CacheTTL    time.Duration
	Retryable   bool
	RateLimited bool

	// LimiterID selects the token bucket for rate-limited tools.
	// Defaults to the tool name, so a saturated limiter never blocks
	// unrelated tools.
	LimiterID string
}

// InvocationRequest is a single tool call. Owned by the caller until it is
// handed to the dispatcher.
type InvocationRequest struct {
	ToolName  string
	Arguments map[string]any
}

// ExecutionResult is the typed outcome returned to the caller. The
// pipeline retains no reference to it.
type ExecutionResult struct {
	OK        bool
	Value     any
	Err       *Error
	FromCache bool
}

// SecretVault is the collaborator contract for secret retrieval.
type SecretVault interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// CompletionRequest carries one AI-completion call.
type CompletionRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// CompletionClient is the collaborator contract for AI completions.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
