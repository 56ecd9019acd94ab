package tools

import (
	"fmt"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Registry holds the set of callable tools, keyed by name. The mapping
// is built once at startup from an explicit registration list; lookups
// never use reflection. Schema renderings are cached and re-derivable
// on demand via Refresh, which is idempotent and safe under concurrent
// callers.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	tools   map[string]Tool
	schemas []mcptypes.Tool
}

// NewRegistry builds a registry from the given tools. It fails when a
// tool has an empty description or a duplicate name, so an incomplete
// registry never serves requests.
func NewRegistry(toolset ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(toolset))}
	for _, t := range toolset {
		spec := t.Spec()
		if spec.Name == "" {
			return nil, fmt.Errorf("tool %T has an empty name", t)
		}
		if spec.Description == "" {
			return nil, fmt.Errorf("tool %q must have a description", spec.Name)
		}
		if _, exists := r.tools[spec.Name]; exists {
			return nil, fmt.Errorf("tool %q registered twice", spec.Name)
		}
		r.tools[spec.Name] = t
		r.order = append(r.order, spec.Name)
	}
	r.Refresh()
	return r, nil
}

// MustNewRegistry is NewRegistry for process composition: a schema or
// registration failure is fatal at startup.
func MustNewRegistry(toolset ...Tool) *Registry {
	r, err := NewRegistry(toolset...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a tool by the exact name a provider asked for.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Refresh re-derives the cached schema list by re-walking the registry.
// Rebuilding is idempotent and side-effect-free beyond replacing the
// cached slice, so concurrent rebuilds are tolerated.
func (r *Registry) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	schemas := make([]mcptypes.Tool, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, schemaForSpec(r.tools[name].Spec()))
	}
	r.schemas = schemas
}

// Schemas returns the generic function/parameters rendering of every
// registered tool. The provider layer converts these into each
// provider's own schema shape.
func (r *Registry) Schemas() []mcptypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcptypes.Tool, len(r.schemas))
	copy(out, r.schemas)
	return out
}

func schemaForSpec(spec Spec) mcptypes.Tool {
	properties := make(map[string]any, len(spec.Params))
	var required []string
	for _, p := range spec.Params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return mcptypes.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		InputSchema: mcptypes.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}

// DefaultTools returns the built-in toolset registered at startup.
func DefaultTools() []Tool {
	return []Tool{
		&CurrentTime{},
		&ListDatasets{},
		&DatasetColumns{},
		&Statistics{},
		&Histogram{},
		&CorrelationHeatmap{},
		&CorrelationScatter{},
		&Modeling{},
	}
}
