package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/llm"
)

// Tool is a capability a specialist can invoke.
type Tool interface {
	// Name returns the identifier the model calls the tool by.
	Name() string

	// Description returns the text shown to the model.
	Description() string

	// Schema returns the JSON Schema of the argument object.
	Schema() *jsonschema.Schema

	// Execute runs the tool with validated, defaulted arguments and
	// returns the text handed back to the model.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

type registeredTool struct {
	tool     Tool
	resolved *jsonschema.Resolved
	params   map[string]any
}

// ToolRegistry holds the tools bound to one agent. Schemas are resolved once
// at registration.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]*registeredTool
	order []string
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]*registeredTool)}
}

// Register adds a tool. It fails on a duplicate name or an unresolvable schema.
func (r *ToolRegistry) Register(t Tool) error {
	name := t.Name()
	schema := t.Schema()
	if schema == nil {
		schema = &jsonschema.Schema{Type: "object"}
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("tool %s: resolving schema: %w", name, err)
	}
	params, err := schemaMap(schema)
	if err != nil {
		return fmt.Errorf("tool %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tools[name]; dup {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = &registeredTool{tool: t, resolved: resolved, params: params}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *ToolRegistry) MustRegister(tools ...Tool) *ToolRegistry {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.tool, true
}

// Names returns tool names in registration order.
func (r *ToolRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Definitions returns LLM-ready tool definitions in registration order.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		rt := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        name,
			Description: rt.tool.Description(),
			Parameters:  rt.params,
		})
	}
	return defs
}

// prepare decodes raw arguments, fills schema defaults and validates the
// result. The returned document is what the tool executes with.
func (r *ToolRegistry) prepare(name, raw string) (Tool, json.RawMessage, error) {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, &ToolValidationError{Tool: name, Err: errors.New("no such tool")}
	}

	args := map[string]any{}
	if trimmed := bytes.TrimSpace([]byte(raw)); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &args); err != nil {
			return nil, nil, &ToolValidationError{Tool: name, Err: fmt.Errorf("arguments are not a JSON object: %w", err)}
		}
		if args == nil {
			args = map[string]any{}
		}
	}
	if err := rt.resolved.ApplyDefaults(&args); err != nil {
		return nil, nil, &ToolValidationError{Tool: name, Err: err}
	}
	if err := rt.resolved.Validate(args); err != nil {
		return nil, nil, &ToolValidationError{Tool: name, Err: err}
	}

	out, err := json.Marshal(args)
	if err != nil {
		return nil, nil, &ToolValidationError{Tool: name, Err: err}
	}
	return rt.tool, out, nil
}

func schemaMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return m, nil
}
