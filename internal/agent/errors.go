package agent

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyResponse matches any *EmptyResponseError.
	ErrEmptyResponse = errors.New("unable to produce a response")

	// ErrHopLimit is reported when a team turn is forced to finish after
	// too many supervisor hops.
	ErrHopLimit = errors.New("hop limit reached")

	// ErrThreadNotFound is returned by SessionStore.Get for unknown ids.
	ErrThreadNotFound = errors.New("thread not found")
)

// EmptyResponseError is returned when a responder exhausts its attempts
// without the model producing text or a tool call.
type EmptyResponseError struct {
	Agent    string
	Attempts int
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s: no usable reply after %d attempts", e.Agent, e.Attempts)
}

func (e *EmptyResponseError) Is(target error) bool { return target == ErrEmptyResponse }

// RoutingError is returned when the supervisor's structured output is
// malformed or names a target outside the label set.
type RoutingError struct {
	Raw    string
	Reason string
}

func (e *RoutingError) Error() string {
	return "invalid routing decision: " + e.Reason
}

// ToolValidationError reports a tool call that was rejected before
// execution: unknown tool, undecodable arguments or a schema violation.
type ToolValidationError struct {
	Tool string
	Err  error
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("invalid call to %s: %v", e.Tool, e.Err)
}

func (e *ToolValidationError) Unwrap() error { return e.Err }

// TimeoutError reports an operation cut off by its deadline.
// It matches context.DeadlineExceeded.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }
