package tools

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidTool   = errors.New("invalid tool definition")
	ErrUnknownTool   = errors.New("tool not registered")
)

// DuplicateNameError reports a second registration under an existing name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("tool %s already registered", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateTool }

// Toolset names the subset of a registry exposed to one persona.
type Toolset interface {
	ToolNames() []string
}

// Registry maps tool names to definitions. It is filled once at startup and
// read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]ToolDefinition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]ToolDefinition)}
}

// Register adds def. The input schema must compile as JSON Schema.
func (r *Registry) Register(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTool)
	}
	if def.Function == nil {
		return fmt.Errorf("%w: %s has no function", ErrInvalidTool, def.Name)
	}
	if def.InputSchema == nil {
		def.InputSchema = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if t, _ := def.InputSchema["type"].(string); t != "object" {
		return fmt.Errorf("%w: %s parameters must be an object schema", ErrInvalidTool, def.Name)
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.InputSchema)); err != nil {
		return fmt.Errorf("%w: %s schema: %v", ErrInvalidTool, def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return &DuplicateNameError{Name: def.Name}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Resolve looks up the implementation for name. A missing tool is reported
// through ok; deciding whether that matters is up to the caller.
func (r *Registry) Resolve(name string) (fn Func, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, false
	}
	return def.Function, true
}

// SchemasFor returns the declarations for the toolset, in the toolset's order.
func (r *Registry) SchemasFor(ts Toolset) ([]ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := ts.ToolNames()
	out := make([]ToolDefinition, 0, len(names))
	for _, name := range names {
		def, ok := r.defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
		}
		out = append(out, def)
	}
	return out, nil
}

// Names lists registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Default returns a registry holding every built-in tool.
func Default(weather *WeatherClient) (*Registry, error) {
	r := NewRegistry()
	defs := []ToolDefinition{
		weather.CurrentDefinition(),
		weather.ForecastDefinition(),
		CalculatorDefinition,
		WebSearchDefinition,
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
