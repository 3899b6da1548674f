package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

const (
	// RetryNudge is the synthetic user message appended after an empty reply.
	RetryNudge = "Respond with a real output"

	// FallbackReply is the content returned once every attempt came back empty.
	FallbackReply = "unable to produce a response"

	// DefaultMaxAttempts caps completion attempts per Respond call.
	DefaultMaxAttempts = 3
)

// ResponderConfig configures a Responder.
type ResponderConfig struct {
	Agent       string // label used for logs, metrics and the reply's Name
	System      string
	Tools       []llm.ToolDefinition
	MaxAttempts int
	MaxTokens   int
	Temperature *float64
}

// Responder asks the model for a reply and re-asks, with a nudge, when the
// reply has neither text nor a tool call.
type Responder struct {
	cfg     ResponderConfig
	client  Completer
	metrics *observe.Metrics
	log     *logging.Logger
}

// NewResponder creates a responder. metrics may be nil.
func NewResponder(cfg ResponderConfig, client Completer, metrics *observe.Metrics, log *logging.Logger) *Responder {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Responder{cfg: cfg, client: client, metrics: metrics, log: log}
}

// WithoutTools returns a copy of r that binds no tools and uses system as
// its system prompt.
func (r *Responder) WithoutTools(system string) *Responder {
	c := *r
	c.cfg.Tools = nil
	c.cfg.System = system
	return &c
}

// Respond returns the model's reply to history. history is never modified.
// When all attempts come back empty the returned message carries
// FallbackReply and the error is an *EmptyResponseError.
func (r *Responder) Respond(ctx context.Context, history []domain.Message) (domain.Message, error) {
	working := history
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		resp, err := r.client.Complete(ctx, llm.CompletionRequest{
			System:      r.cfg.System,
			Messages:    working,
			Tools:       r.cfg.Tools,
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		})
		if err != nil {
			return domain.Message{}, fmt.Errorf("%s completion: %w", r.cfg.Agent, err)
		}
		if r.metrics != nil {
			r.metrics.RecordLLM(ctx, r.cfg.Agent, resp.Model, time.Since(start))
		}

		if len(resp.ToolCalls) > 0 || strings.TrimSpace(resp.Content) != "" {
			msg := domain.AssistantMessage(r.cfg.Agent, resp.Content)
			msg.ToolCalls = resp.ToolCalls
			return msg, nil
		}

		r.log.Debug().Int("attempt", attempt).Msg("empty reply, nudging")
		working = append(working[:len(working):len(working)], domain.UserMessage(RetryNudge))
	}

	if r.metrics != nil {
		r.metrics.EmptyResponses.Add(ctx, 1)
	}
	return domain.AssistantMessage(r.cfg.Agent, FallbackReply),
		&EmptyResponseError{Agent: r.cfg.Agent, Attempts: r.cfg.MaxAttempts}
}
