package domain

import "time"

// Routing is the supervisor state carried by a thread between hops.
type Routing struct {
	Next         Label  `json:"next,omitempty"`
	PendingQuery string `json:"pendingQuery,omitempty"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// Thread is the persisted conversation state keyed by thread id.
type Thread struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	Routing   Routing   `json:"routing"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy whose message slice does not alias t's.
func (t *Thread) Clone() *Thread {
	c := *t
	c.Messages = append([]Message(nil), t.Messages...)
	return &c
}

// ThreadSummary is the listing form of a thread.
type ThreadSummary struct {
	ID           string    `json:"id"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
