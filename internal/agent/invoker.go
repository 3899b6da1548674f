package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

// DefaultToolTimeout bounds a single tool call when none is configured.
const DefaultToolTimeout = 20 * time.Second

// MaxParallelTools caps the calls from one assistant message that run at once.
const MaxParallelTools = 4

// Invoker validates and executes tool calls against a registry.
// Each call makes at most one attempt.
type Invoker struct {
	tools    *ToolRegistry
	timeout  time.Duration
	parallel int
	metrics  *observe.Metrics
	log      *logging.Logger
}

// NewInvoker creates an invoker. A zero timeout means DefaultToolTimeout;
// metrics may be nil.
func NewInvoker(tools *ToolRegistry, timeout time.Duration, metrics *observe.Metrics, log *logging.Logger) *Invoker {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return &Invoker{
		tools:    tools,
		timeout:  timeout,
		parallel: MaxParallelTools,
		metrics:  metrics,
		log:      log.Sub("tools"),
	}
}

type toolOutcome struct {
	out string
	err error
}

// Invoke runs one call. Errors are *ToolValidationError, *TimeoutError, the
// tool's own error, or the parent context's error.
func (i *Invoker) Invoke(ctx context.Context, call domain.ToolCall) (string, error) {
	start := time.Now()
	out, err := i.invoke(ctx, call)

	status := "ok"
	var verr *ToolValidationError
	var terr *TimeoutError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		status = "invalid"
	case errors.As(err, &terr):
		status = "timeout"
	default:
		status = "error"
	}
	if i.metrics != nil {
		i.metrics.RecordToolCall(ctx, call.Name, status, time.Since(start))
	}

	ev := i.log.Debug()
	if err != nil {
		ev = i.log.Warn().Err(err)
	}
	ev.Str("tool", call.Name).
		Str("callId", call.ID).
		Str("status", status).
		Dur("duration", time.Since(start)).
		Msg("tool call")
	return out, err
}

func (i *Invoker) invoke(ctx context.Context, call domain.ToolCall) (string, error) {
	tool, args, err := i.tools.prepare(call.Name, call.Arguments)
	if err != nil {
		return "", err
	}

	tctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	// The tool runs in its own goroutine so that one ignoring its context
	// still cannot hold the turn past the deadline.
	done := make(chan toolOutcome, 1)
	go func() {
		out, err := tool.Execute(tctx, args)
		done <- toolOutcome{out: out, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(o.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", &TimeoutError{Op: "tool " + call.Name, After: i.timeout}
		}
		return o.out, o.err
	case <-tctx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", &TimeoutError{Op: "tool " + call.Name, After: i.timeout}
	}
}

// InvokeAll runs the calls concurrently and returns one tool message per
// call, in call order. Failures are rendered into the message content.
func (i *Invoker) InvokeAll(ctx context.Context, calls []domain.ToolCall, agent string, onEvent EventFunc) []domain.Message {
	for _, c := range calls {
		onEvent.emit(Event{Type: EventToolStart, Agent: agent, Tool: c.Name, CallID: c.ID})
	}

	outs := make([]toolOutcome, len(calls))
	var g errgroup.Group
	g.SetLimit(i.parallel)
	for n, c := range calls {
		g.Go(func() error {
			out, err := i.Invoke(ctx, c)
			outs[n] = toolOutcome{out: out, err: err}
			return nil
		})
	}
	// Per-call errors are kept in outs; the group itself never fails.
	_ = g.Wait()

	msgs := make([]domain.Message, len(calls))
	for n, c := range calls {
		content := outs[n].out
		ev := Event{Type: EventToolResult, Agent: agent, Tool: c.Name, CallID: c.ID}
		if err := outs[n].err; err != nil {
			content = FormatToolError(err)
			ev.Error = err.Error()
		}
		msgs[n] = domain.ToolResult(c.ID, content)
		onEvent.emit(ev)
	}
	return msgs
}

// FormatToolError renders a failed call as text for the model.
func FormatToolError(err error) string {
	return fmt.Sprintf("Error: %v\nPlease fix your mistakes.", err)
}
