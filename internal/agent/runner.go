package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/hooks"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

var (
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query is required")

	// ErrUnknownAgent is returned for an agent id that is not wired.
	ErrUnknownAgent = errors.New("unknown agent")
)

// Request is one user turn.
type Request struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id,omitempty"`
}

// Result is the outcome of a successful turn.
type Result struct {
	Response      string        `json:"response"`
	AgentID       string        `json:"agent_id"`
	ThreadID      string        `json:"thread_id"`
	Timestamp     time.Time     `json:"timestamp"`
	MessagesCount int           `json:"messages_count"`
	Warnings      []string      `json:"warnings,omitempty"`
	Duration      time.Duration `json:"-"`
}

// AgentInfo describes an addressable agent.
type AgentInfo struct {
	ID    domain.AgentID `json:"agent_id"`
	Model string         `json:"model"`
	Tools []string       `json:"tools"`
}

// RunnerDeps are the collaborators of a Runner. Hooks and Metrics may be nil.
type RunnerDeps struct {
	Store       SessionStore
	Specialists []*Specialist
	Team        *Team
	Hooks       *hooks.Manager
	Metrics     *observe.Metrics
	Log         *logging.Logger
}

// Runner executes turns: it loads the thread, runs the requested agent
// and persists the user message and the reply.
type Runner struct {
	store       SessionStore
	locks       *ThreadLocks
	specialists map[domain.AgentID]*Specialist
	team        *Team
	hooks       *hooks.Manager
	metrics     *observe.Metrics
	log         *logging.Logger
}

// NewRunner creates a runner.
func NewRunner(d RunnerDeps) *Runner {
	specs := make(map[domain.AgentID]*Specialist, len(d.Specialists))
	for _, s := range d.Specialists {
		specs[s.Label().AgentID()] = s
	}
	return &Runner{
		store:       d.Store,
		locks:       NewThreadLocks(),
		specialists: specs,
		team:        d.Team,
		hooks:       d.Hooks,
		metrics:     d.Metrics,
		log:         d.Log.Sub("runner"),
	}
}

// Store returns the runner's session store.
func (r *Runner) Store() SessionStore { return r.store }

// Locks returns the per-thread turn locks.
func (r *Runner) Locks() *ThreadLocks { return r.locks }

// Agents lists the wired agents in API order.
func (r *Runner) Agents() []AgentInfo {
	var out []AgentInfo
	for _, id := range domain.AgentIDs {
		if info, ok := r.Describe(id); ok {
			out = append(out, info)
		}
	}
	return out
}

// Describe returns information about one agent.
func (r *Runner) Describe(id domain.AgentID) (AgentInfo, bool) {
	if id == domain.AgentTeam {
		if r.team == nil {
			return AgentInfo{}, false
		}
		var tools []string
		for _, aid := range domain.AgentIDs {
			if s, ok := r.specialists[aid]; ok {
				tools = append(tools, s.Tools().Names()...)
			}
		}
		return AgentInfo{ID: id, Model: r.team.Supervisor().Model(), Tools: dedupe(tools)}, true
	}
	s, ok := r.specialists[id]
	if !ok {
		return AgentInfo{}, false
	}
	return AgentInfo{ID: id, Model: s.Model(), Tools: s.Tools().Names()}, true
}

// Run executes one turn against the agent id. Turns on the same thread
// are serialized. On failure the thread is left unchanged.
func (r *Runner) Run(ctx context.Context, id domain.AgentID, req Request, onEvent EventFunc) (*Result, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if _, ok := r.Describe(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}

	ctx, span := observe.StartSpan(ctx, "turn."+string(id))
	defer span.End()

	if req.ThreadID != "" {
		unlock, err := r.locks.Lock(ctx, req.ThreadID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	thread, created, err := r.store.GetOrCreate(ctx, req.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("loading thread: %w", err)
	}
	log := r.log.Thread(thread.ID)
	log.Info().
		Str("agent", string(id)).
		Bool("newThread", created).
		Int("historyLen", len(thread.Messages)).
		Msg("turn received")
	r.hooks.Emit(ctx, hooks.EventTurnReceived, map[string]any{
		"threadId": thread.ID,
		"agent":    string(id),
		"query":    query,
	})

	if r.metrics != nil {
		r.metrics.ActiveTurns.Add(ctx, 1)
		defer r.metrics.ActiveTurns.Add(ctx, -1)
	}

	emit := func(ev Event) {
		if ev.Type == EventRoute {
			r.hooks.Emit(ctx, hooks.EventRoutingDecided, map[string]any{
				"threadId":  thread.ID,
				"next":      ev.Agent,
				"reasoning": ev.Reasoning,
				"hop":       ev.Hop,
			})
		}
		onEvent.emit(ev)
	}

	user := domain.UserMessage(query)
	history := append(thread.Messages[:len(thread.Messages):len(thread.Messages)], user)

	reply, routing, agentID, warnings, err := r.dispatch(ctx, id, history, thread.Routing, EventFunc(emit))
	if err != nil {
		r.fail(ctx, log, id, thread.ID, start, err)
		return nil, err
	}

	if err := r.store.Append(ctx, thread.ID, user, reply); err != nil {
		r.fail(ctx, log, id, thread.ID, start, err)
		return nil, fmt.Errorf("saving turn: %w", err)
	}
	if err := r.store.SetRouting(ctx, thread.ID, routing); err != nil {
		log.Warn().Err(err).Msg("saving routing state")
	}

	res := &Result{
		Response:      reply.Content,
		AgentID:       string(agentID),
		ThreadID:      thread.ID,
		Timestamp:     time.Now().UTC(),
		MessagesCount: len(thread.Messages) + 2,
		Warnings:      warnings,
		Duration:      time.Since(start),
	}

	onEvent.emit(Event{Type: EventDone, Agent: res.AgentID, Content: res.Response})
	if r.metrics != nil {
		r.metrics.RecordTurn(ctx, string(id), "ok", res.Duration)
	}
	r.hooks.Emit(ctx, hooks.EventTurnCompleted, map[string]any{
		"threadId":      res.ThreadID,
		"agent":         res.AgentID,
		"messagesCount": res.MessagesCount,
		"durationMs":    res.Duration.Milliseconds(),
	})
	log.Info().
		Str("agent", res.AgentID).
		Int("messagesCount", res.MessagesCount).
		Int("warnings", len(warnings)).
		Dur("duration", res.Duration).
		Msg("turn completed")
	return res, nil
}

func (r *Runner) dispatch(ctx context.Context, id domain.AgentID, history []domain.Message, routing domain.Routing, emit EventFunc) (domain.Message, domain.Routing, domain.AgentID, []string, error) {
	if id == domain.AgentTeam {
		routing.PendingQuery = ""
		tr, err := r.team.Run(ctx, history, routing, emit)
		if err != nil {
			return domain.Message{}, routing, "", nil, err
		}
		name, agentID := "supervisor", domain.AgentTeam
		if tr.LastAgent != "" {
			name, agentID = string(tr.LastAgent), tr.LastAgent.AgentID()
		}
		return domain.AssistantMessage(name, tr.Response), tr.Routing, agentID, tr.Warnings, nil
	}

	spec := r.specialists[id]
	c, err := spec.Run(ctx, history, emit)
	if err != nil {
		return domain.Message{}, routing, "", nil, err
	}
	routing = domain.Routing{Next: spec.Label(), PendingQuery: domain.LatestUser(history)}
	return c.Message, routing, id, c.Warnings, nil
}

func (r *Runner) fail(ctx context.Context, log *logging.Logger, id domain.AgentID, threadID string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordTurn(ctx, string(id), "error", time.Since(start))
	}
	r.hooks.Emit(ctx, hooks.EventTurnFailed, map[string]any{
		"threadId": threadID,
		"agent":    string(id),
		"error":    err.Error(),
	})
	log.Error().Err(err).Str("agent", string(id)).Msg("turn failed")
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
