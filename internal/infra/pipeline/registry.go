package pipeline

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"atomd/internal/domain"
)

// Registry maps tool names to their descriptors and handlers. Tools are
// registered during startup and the set is immutable once serving begins;
// the lock exists so registration order never matters.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*registeredTool
}

type registeredTool struct {
	descriptor domain.ToolDescriptor
	handler    domain.Handler
	schema     *jsonschema.Resolved
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*registeredTool)}
}

// Register adds a tool under its descriptor name. The input schema is
// resolved here so a malformed schema fails startup, not the first call.
// Registering the same name twice is a programming error and is rejected.
func (r *Registry) Register(descriptor domain.ToolDescriptor, handler domain.Handler) error {
	if descriptor.Name == "" {
		return fmt.Errorf("register tool: empty name")
	}
	if handler == nil {
		return fmt.Errorf("register tool %q: nil handler", descriptor.Name)
	}
	if descriptor.LimiterID == "" {
		descriptor.LimiterID = descriptor.Name
	}

	var resolved *jsonschema.Resolved
	if descriptor.InputSchema != nil {
		var err error
		resolved, err = descriptor.InputSchema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("register tool %q: resolve schema: %w", descriptor.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[descriptor.Name]; exists {
		return fmt.Errorf("register tool %q: already registered", descriptor.Name)
	}
	r.tools[descriptor.Name] = &registeredTool{
		descriptor: descriptor,
		handler:    handler,
		schema:     resolved,
	}
	return nil
}

// Override applies a per-tool configuration adjustment. A positive cache
// TTL makes the tool cacheable with that TTL; Disabled removes it from the
// set entirely. Called during startup, before serving begins.
func (r *Registry) Override(name string, override domain.ToolOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tool, ok := r.tools[name]
	if !ok {
		return fmt.Errorf("override tool %q: not registered", name)
	}
	if override.Disabled {
		delete(r.tools, name)
		return nil
	}
	if override.CacheTTLSeconds > 0 {
		tool.descriptor.Cacheable = true
		tool.descriptor.CacheTTL = time.Duration(override.CacheTTLSeconds) * time.Second
	}
	return nil
}

func (r *Registry) resolve(name string) (*registeredTool, *domain.Error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.E(domain.CodeUnknownTool, "resolve tool",
			fmt.Sprintf("no tool named %q", name), domain.ErrToolNotFound)
	}
	return tool, nil
}

// Descriptors returns every registered descriptor sorted by name, for
// listing over the serving surface.
func (r *Registry) Descriptors() []domain.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ToolDescriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
