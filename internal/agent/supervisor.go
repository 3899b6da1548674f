package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

// routerSchema constrains the supervisor's reply.
var routerSchema = func() *jsonschema.Schema {
	labels := make([]any, len(domain.Labels))
	for i, l := range domain.Labels {
		labels[i] = string(l)
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"next": {
				Type:        "string",
				Enum:        labels,
				Description: "worker to route to next, or FINISH",
			},
			"reasoning": {
				Type:        "string",
				Description: "Support proper reasoning for routing to the worker",
			},
		},
		Required:             []string{"next", "reasoning"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}()

// SupervisorConfig configures the supervisor.
type SupervisorConfig struct {
	Model       string
	Prompt      string // overrides the built-in coordinator prompt
	MaxTokens   int
	Temperature *float64
}

// Supervisor picks the next specialist for a team turn.
type Supervisor struct {
	cfg      SupervisorConfig
	client   Completer
	system   string
	format   *llm.ResponseSchema
	resolved *jsonschema.Resolved
	metrics  *observe.Metrics
	log      *logging.Logger
}

// NewSupervisor creates a supervisor. metrics may be nil.
func NewSupervisor(cfg SupervisorConfig, client Completer, metrics *observe.Metrics, log *logging.Logger) (*Supervisor, error) {
	resolved, err := routerSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving router schema: %w", err)
	}
	params, err := schemaMap(routerSchema)
	if err != nil {
		return nil, err
	}
	// Strict structured outputs want the literal boolean form.
	params["additionalProperties"] = false
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = SupervisorPrompt
	}
	return &Supervisor{
		cfg:    cfg,
		client: client,
		system: BuildSystemPrompt(PromptConfig{Role: prompt}),
		format: &llm.ResponseSchema{
			Name:        "router",
			Description: "The next worker to route to, with reasoning.",
			Schema:      params,
		},
		resolved: resolved,
		metrics:  metrics,
		log:      log.Sub("supervisor"),
	}, nil
}

// Model returns the configured primary model.
func (s *Supervisor) Model() string { return s.cfg.Model }

// Decide asks the model for the next routing target given the full history.
// It returns the decision and the updated routing state. A reply that does
// not validate yields a FINISH decision together with a *RoutingError;
// transport errors are returned as is.
func (s *Supervisor) Decide(ctx context.Context, history []domain.Message, routing domain.Routing) (domain.RoutingDecision, domain.Routing, error) {
	if routing.PendingQuery == "" {
		routing.PendingQuery = domain.LatestUser(history)
	}

	start := time.Now()
	resp, err := s.client.Complete(ctx, llm.CompletionRequest{
		System:         s.system,
		Messages:       history,
		ResponseSchema: s.format,
		MaxTokens:      s.cfg.MaxTokens,
		Temperature:    s.cfg.Temperature,
	})
	if err != nil {
		return domain.RoutingDecision{}, routing, fmt.Errorf("supervisor completion: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordLLM(ctx, "supervisor", resp.Model, time.Since(start))
	}

	dec, rerr := s.parse(resp.Content)
	if rerr != nil {
		s.log.Warn().Err(rerr).Str("raw", rerr.Raw).Msg("defaulting to FINISH")
		if s.metrics != nil {
			s.metrics.RoutingErrors.Add(ctx, 1)
		}
		dec = domain.RoutingDecision{Next: domain.LabelFinish}
	}

	routing.Next = dec.Next
	routing.Reasoning = dec.Reasoning
	if s.metrics != nil {
		s.metrics.RecordRouting(ctx, string(dec.Next))
	}
	s.log.Debug().Str("next", string(dec.Next)).Str("reasoning", dec.Reasoning).Msg("routing decided")

	if rerr != nil {
		return dec, routing, rerr
	}
	return dec, routing, nil
}

func (s *Supervisor) parse(raw string) (domain.RoutingDecision, *RoutingError) {
	body := stripFences(raw)
	if body == "" {
		return domain.RoutingDecision{}, &RoutingError{Raw: raw, Reason: "empty reply"}
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return domain.RoutingDecision{}, &RoutingError{Raw: raw, Reason: "reply is not a JSON object: " + err.Error()}
	}
	if err := s.resolved.Validate(doc); err != nil {
		return domain.RoutingDecision{}, &RoutingError{Raw: raw, Reason: err.Error()}
	}

	next, _ := doc["next"].(string)
	reasoning, _ := doc["reasoning"].(string)
	dec := domain.RoutingDecision{Next: domain.Label(next), Reasoning: reasoning}
	if !dec.Next.Valid() {
		return domain.RoutingDecision{}, &RoutingError{Raw: raw, Reason: fmt.Sprintf("unknown target %q", next)}
	}
	return dec, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit even under a JSON response format.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
