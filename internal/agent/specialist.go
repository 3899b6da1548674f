package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

// DefaultMaxToolRounds stops a specialist that keeps requesting tools.
const DefaultMaxToolRounds = 8

// FinalAnswerNote closes the system prompt once the tool round limit is hit.
const FinalAnswerNote = "No tools are available for this reply. Answer with the information gathered so far."

// SpecialistConfig parameterizes one specialist.
type SpecialistConfig struct {
	Label         domain.Label
	Model         string
	Prompt        string
	Tools         *ToolRegistry
	MaxAttempts   int
	MaxToolRounds int
	MaxTokens     int
	Temperature   *float64
	ToolTimeout   time.Duration
}

// Contribution is a specialist's output for one run.
type Contribution struct {
	Message   domain.Message // final assistant message, Name set to the label
	ToolCalls int
	Rounds    int
	Warnings  []string
}

// Specialist answers one travel domain by alternating model replies and
// tool calls until the model replies without requesting tools.
type Specialist struct {
	cfg       SpecialistConfig
	responder *Responder
	final     *Responder
	invoker   *Invoker
	log       *logging.Logger
}

// NewSpecialist creates a specialist that talks to client.
func NewSpecialist(cfg SpecialistConfig, client Completer, metrics *observe.Metrics, log *logging.Logger) *Specialist {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.Tools == nil {
		cfg.Tools = NewToolRegistry()
	}
	slog := log.Sub(string(cfg.Label))

	system := BuildSystemPrompt(PromptConfig{Role: cfg.Prompt, Tools: cfg.Tools.Definitions()})
	r := NewResponder(ResponderConfig{
		Agent:       string(cfg.Label),
		System:      system,
		Tools:       cfg.Tools.Definitions(),
		MaxAttempts: cfg.MaxAttempts,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, client, metrics, slog)
	final := r.WithoutTools(BuildSystemPrompt(PromptConfig{Role: cfg.Prompt, Extra: FinalAnswerNote}))

	return &Specialist{
		cfg:       cfg,
		responder: r,
		final:     final,
		invoker:   NewInvoker(cfg.Tools, cfg.ToolTimeout, metrics, slog),
		log:       slog,
	}
}

// Label returns the specialist's routing label.
func (s *Specialist) Label() domain.Label { return s.cfg.Label }

// Model returns the configured primary model.
func (s *Specialist) Model() string { return s.cfg.Model }

// Tools returns the specialist's tool registry.
func (s *Specialist) Tools() *ToolRegistry { return s.cfg.Tools }

// Run drives the specialist over history until it produces a final
// message. Tool and provider failures are fed back to the model; only LLM
// transport errors and context cancellation are returned.
func (s *Specialist) Run(ctx context.Context, history []domain.Message, onEvent EventFunc) (*Contribution, error) {
	ctx, span := observe.StartSpan(ctx, "specialist."+string(s.cfg.Label))
	defer span.End()

	label := string(s.cfg.Label)
	working := append([]domain.Message(nil), history...)
	c := &Contribution{}

	for {
		responder := s.responder
		if c.Rounds >= s.cfg.MaxToolRounds {
			responder = s.final
		}

		reply, err := responder.Respond(ctx, working)
		if errors.Is(err, ErrEmptyResponse) {
			s.log.Warn().Err(err).Msg("falling back to canned reply")
			c.Warnings = append(c.Warnings, err.Error())
			c.Message = reply
			break
		}
		if err != nil {
			return nil, err
		}

		if len(reply.ToolCalls) == 0 || responder == s.final {
			if strings.TrimSpace(reply.Content) == "" {
				reply.Content = FallbackReply
			}
			reply.ToolCalls = nil
			c.Message = reply
			break
		}

		c.Rounds++
		c.ToolCalls += len(reply.ToolCalls)
		working = append(working, reply)
		results := s.invoker.InvokeAll(ctx, reply.ToolCalls, label, onEvent)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		working = append(working, results...)

		if c.Rounds == s.cfg.MaxToolRounds {
			s.log.Warn().Int("rounds", c.Rounds).Msg("tool round limit reached, requesting final answer")
		}
	}

	c.Message.Name = label
	onEvent.emit(Event{Type: EventContribution, Agent: label, Content: c.Message.Content})
	s.log.Debug().
		Int("rounds", c.Rounds).
		Int("toolCalls", c.ToolCalls).
		Msg("specialist done")
	return c, nil
}
