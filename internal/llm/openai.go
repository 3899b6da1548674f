package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/soyeahso/wayfarer/internal/domain"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint
// (Together, OpenAI, vLLM, Ollama's /v1, ...).
type OpenAIClient struct {
	name   string
	client oai.Client
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	baseURL    string
	timeout    time.Duration
	maxRetries *int
	httpClient *http.Client
}

// WithBaseURL points the client at a non-default endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openaiConfig) { c.timeout = d }
}

// WithMaxRetries overrides the SDK's transport-level retry count.
func WithMaxRetries(n int) OpenAIOption {
	return func(c *openaiConfig) { c.maxRetries = &n }
}

// WithHTTPClient supplies the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openaiConfig) { c.httpClient = hc }
}

// NewOpenAIClient creates a provider named name.
func NewOpenAIClient(name, apiKey string, opts ...OpenAIOption) *OpenAIClient {
	cfg := &openaiConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.maxRetries != nil {
		reqOpts = append(reqOpts, option.WithMaxRetries(*cfg.maxRetries))
	}
	hc := cfg.httpClient
	if hc == nil && cfg.timeout > 0 {
		hc = &http.Client{Timeout: cfg.timeout}
	}
	if hc != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(hc))
	}

	return &OpenAIClient{name: name, client: oai.NewClient(reqOpts...)}
}

func (c *OpenAIClient) Name() string { return c.name }

// Complete sends one chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Message: err.Error()}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Message: "empty choices in response"}
	}

	choice := resp.Choices[0]
	out := &CompletionResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Model:        resp.Model,
		Duration:     time.Since(start),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &ProviderError{Provider: c.name, Code: apiErr.StatusCode, Message: msg, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &ProviderError{Provider: c.name, Message: err.Error(), Err: err}
}

// buildParams converts a CompletionRequest into SDK params.
func buildParams(req CompletionRequest) (oai.ChatCompletionNewParams, error) {
	if req.Model == "" {
		return oai.ChatCompletionNewParams{}, fmt.Errorf("model must not be empty")
	}

	var messages []oai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, oai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		msg, err := convertMessage(m)
		if err != nil {
			return oai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, msg)
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature != nil {
		params.Temperature = param.NewOpt(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}

	for _, td := range req.Tools {
		params.Tools = append(params.Tools, oai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        td.Name,
				Description: param.NewOpt(td.Description),
				Parameters:  shared.FunctionParameters(td.Parameters),
			},
		})
	}

	if rs := req.ResponseSchema; rs != nil {
		schema := shared.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   rs.Name,
			Schema: rs.Schema,
			Strict: oai.Bool(true),
		}
		if rs.Description != "" {
			schema.Description = oai.String(rs.Description)
		}
		params.ResponseFormat = oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{JSONSchema: schema},
		}
	}

	return params, nil
}

// convertMessage maps a thread message onto the SDK's message union.
func convertMessage(m domain.Message) (oai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case domain.RoleSystem:
		return oai.SystemMessage(m.Content), nil

	case domain.RoleUser:
		return oai.UserMessage(m.Content), nil

	case domain.RoleAssistant:
		asst := oai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			asst.Content.OfString = oai.String(m.Content)
		}
		if m.Name != "" {
			asst.Name = oai.String(m.Name)
		}
		for _, tc := range m.ToolCalls {
			asst.ToolCalls = append(asst.ToolCalls, oai.ChatCompletionMessageToolCallParam{
				ID: tc.ID,
				Function: oai.ChatCompletionMessageToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}, nil

	case domain.RoleTool:
		return oai.ToolMessage(m.Content, m.ToolCallID), nil

	default:
		return oai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unknown message role %q", m.Role)
	}
}
