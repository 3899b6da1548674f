package agent

// EventType names a progress event emitted while a turn runs.
type EventType string

const (
	EventRoute        EventType = "route"        // supervisor picked a target
	EventToolStart    EventType = "tool_start"   // a tool call is about to run
	EventToolResult   EventType = "tool_result"  // a tool call finished, possibly with an error
	EventContribution EventType = "contribution" // a specialist produced its final message
	EventDone         EventType = "done"         // the turn finished
)

// Event is a single progress notification.
type Event struct {
	Type      EventType `json:"type"`
	Agent     string    `json:"agent,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	CallID    string    `json:"callId,omitempty"`
	Content   string    `json:"content,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"`
	Hop       int       `json:"hop,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventFunc receives progress events. Calls are made from the goroutine
// running the turn, one at a time.
type EventFunc func(Event)

func (f EventFunc) emit(ev Event) {
	if f != nil {
		f(ev)
	}
}
