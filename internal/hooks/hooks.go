// Package hooks dispatches wayfarer lifecycle events (turns, routing,
// thread eviction, gateway start/stop) to registered handlers.
package hooks

import (
	"context"
	"sort"
	"sync"

	"github.com/soyeahso/wayfarer/internal/logging"
)

// Event names.
const (
	EventTurnReceived   = "turn_received"
	EventTurnCompleted  = "turn_completed"
	EventTurnFailed     = "turn_failed"
	EventRoutingDecided = "routing_decided"
	EventThreadEvicted  = "thread_evicted"
	EventGatewayStart   = "gateway_start"
	EventGatewayStop    = "gateway_stop"
)

// AllEvents lists every event the runtime emits.
var AllEvents = []string{
	EventTurnReceived,
	EventTurnCompleted,
	EventTurnFailed,
	EventRoutingDecided,
	EventThreadEvicted,
	EventGatewayStart,
	EventGatewayStop,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles a hook event. A returned error is logged and does not
// stop the remaining handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager holds hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event under name.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// OnAll registers the same handler for every known event.
func (m *Manager) OnAll(name string, handler Handler) {
	for _, ev := range AllEvents {
		m.On(ev, name, handler)
	}
}

// Off removes every handler registered under name for the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.handlers[event][:0:0]
	for _, h := range m.handlers[event] {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	m.handlers[event] = kept
}

// Emit runs the event's handlers synchronously, in registration order.
// A nil Manager is a no-op.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	if m == nil {
		return
	}
	p := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		m.call(ctx, h, p)
	}
}

// EmitAsync runs each handler in its own goroutine and returns immediately.
func (m *Manager) EmitAsync(ctx context.Context, event string, data map[string]any) {
	if m == nil {
		return
	}
	p := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		go m.call(ctx, h, p)
	}
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]namedHandler, len(m.handlers[event]))
	copy(out, m.handlers[event])
	return out
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", p.Event).
			Str("handler", h.name).
			Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the events with at least one handler, sorted.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	return events
}

// AuditLog returns a handler that writes every payload to log at debug level.
func AuditLog(log *logging.Logger) Handler {
	return func(_ context.Context, p Payload) error {
		ev := log.Debug().Str("event", p.Event)
		for k, v := range p.Data {
			ev = ev.Interface(k, v)
		}
		ev.Msg("hook")
		return nil
	}
}
