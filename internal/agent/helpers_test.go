package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/logging"
)

func silentLog() *logging.Logger {
	return logging.Nop()
}

// funcTool adapts a closure to the Tool interface.
type funcTool struct {
	name   string
	schema *jsonschema.Schema
	fn     func(ctx context.Context, args json.RawMessage) (string, error)
}

func (f *funcTool) Name() string               { return f.name }
func (f *funcTool) Description() string        { return "test tool " + f.name }
func (f *funcTool) Schema() *jsonschema.Schema { return f.schema }
func (f *funcTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return f.fn(ctx, args)
}

func echoTool(name string) *funcTool {
	return &funcTool{
		name:   name,
		schema: &jsonschema.Schema{Type: "object"},
		fn: func(_ context.Context, args json.RawMessage) (string, error) {
			return name + ":" + string(args), nil
		},
	}
}

// hotelSearchTool mirrors the search_hotels argument schema and records
// the arguments it was executed with.
func hotelSearchTool(got *[]map[string]any) *funcTool {
	return &funcTool{
		name: "search_hotels",
		schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"city_code": {Type: "string"},
				"radius":    {Types: []string{"string", "integer"}, Default: json.RawMessage(`"5"`)},
			},
			Required: []string{"city_code"},
		},
		fn: func(_ context.Context, args json.RawMessage) (string, error) {
			var m map[string]any
			if err := json.Unmarshal(args, &m); err != nil {
				return "", err
			}
			*got = append(*got, m)
			return `[{"name":"Hotel Artemide","hotelId":"RMART001"}]`, nil
		},
	}
}

func registry(t *testing.T, tools ...Tool) *ToolRegistry {
	t.Helper()
	r := NewToolRegistry()
	for _, tool := range tools {
		require.NoError(t, r.Register(tool))
	}
	return r
}

func scripted(replies ...*llm.CompletionResponse) (*llm.MockClient, *llm.Recorder) {
	fn, rec := llm.Script(replies...)
	return &llm.MockClient{ProviderName: "mock", CompleteFunc: fn}, rec
}

func textReply(s string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: s, Model: "mock-model"}
}

func callReply(calls ...domain.ToolCall) *llm.CompletionResponse {
	return &llm.CompletionResponse{ToolCalls: calls, Model: "mock-model"}
}

func call(id, name, args string) domain.ToolCall {
	return domain.ToolCall{ID: id, Name: name, Arguments: args}
}

func routeReply(next domain.Label, reasoning string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: fmt.Sprintf(`{"next":%q,"reasoning":%q}`, next, reasoning)}
}

func newTestSpecialist(label domain.Label, client Completer, tools *ToolRegistry) *Specialist {
	return NewSpecialist(SpecialistConfig{
		Label:  label,
		Model:  "mock-model",
		Prompt: SpecialistPrompt(label),
		Tools:  tools,
	}, client, nil, silentLog())
}

func newTestSupervisor(t *testing.T, client Completer) *Supervisor {
	t.Helper()
	sup, err := NewSupervisor(SupervisorConfig{Model: "mock-model"}, client, nil, silentLog())
	require.NoError(t, err)
	return sup
}

// collector records progress events.
type collector struct {
	events []Event
}

func (c *collector) fn() EventFunc {
	return func(ev Event) { c.events = append(c.events, ev) }
}

func (c *collector) types() []EventType {
	out := make([]EventType, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Type
	}
	return out
}
