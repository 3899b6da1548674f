// Package travel implements the tools the specialists call: flight,
// hotel and destination lookups against Amadeus, IP geolocation and web
// search.
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/agent"
)

// typedTool adapts a function over a decoded argument struct to agent.Tool.
type typedTool[A any] struct {
	name   string
	desc   string
	schema *jsonschema.Schema
	run    func(ctx context.Context, args A) (string, error)
}

func newTool[A any](name, desc string, schema *jsonschema.Schema, run func(context.Context, A) (string, error)) agent.Tool {
	return &typedTool[A]{name: name, desc: desc, schema: schema, run: run}
}

func (t *typedTool[A]) Name() string               { return t.name }
func (t *typedTool[A]) Description() string        { return t.desc }
func (t *typedTool[A]) Schema() *jsonschema.Schema { return t.schema }

func (t *typedTool[A]) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var args A
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", fmt.Errorf("decoding %s arguments: %w", t.name, err)
		}
	}
	return t.run(ctx, args)
}

// Schema builders.

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func strDefault(desc, def string) *jsonschema.Schema {
	s := str(desc)
	s.Default = mustJSON(def)
	return s
}

func integer(desc string, def int) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc, Default: mustJSON(def)}
}

func number(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: desc}
}

func enum(desc string, values ...string) *jsonschema.Schema {
	s := str(desc)
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Output helpers.

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// looseString renders a JSON scalar that may arrive either quoted or bare.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
