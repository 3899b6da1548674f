// Package llm defines the chat-completion client used by the agents and the
// OpenAI-compatible provider behind it.
package llm

import (
	"context"
	"time"

	"github.com/soyeahso/wayfarer/internal/domain"
)

// ToolDefinition describes a tool the model can invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema object
}

// ResponseSchema constrains the reply to a JSON document.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      map[string]any
}

// CompletionRequest is the input to Complete.
type CompletionRequest struct {
	Model          string           `json:"model,omitempty"`
	System         string           `json:"system,omitempty"`
	Messages       []domain.Message `json:"messages"`
	Tools          []ToolDefinition `json:"tools,omitempty"`
	ResponseSchema *ResponseSchema  `json:"-"`
	MaxTokens      int              `json:"maxTokens,omitempty"`
	Temperature    *float64         `json:"temperature,omitempty"`
}

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	Content      string            `json:"content"`
	ToolCalls    []domain.ToolCall `json:"toolCalls,omitempty"`
	FinishReason string            `json:"finishReason,omitempty"`
	Usage        Usage             `json:"usage"`
	Model        string            `json:"model,omitempty"`
	Duration     time.Duration     `json:"duration,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Client is the interface all LLM providers implement.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g. "together").
	Name() string
}
