package llm

import (
	"context"
	"sync"
)

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Content: "mock response"}, nil
}

// Script returns a CompleteFunc that replays the given replies in order and
// records every request it sees. Once the script runs out, the last reply repeats.
func Script(replies ...*CompletionResponse) (func(context.Context, CompletionRequest) (*CompletionResponse, error), *Recorder) {
	rec := &Recorder{}
	return func(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
		n := rec.add(req)
		if len(replies) == 0 {
			return &CompletionResponse{}, nil
		}
		if n >= len(replies) {
			n = len(replies) - 1
		}
		r := *replies[n]
		return &r, nil
	}, rec
}

// Recorder captures requests seen by a scripted mock.
type Recorder struct {
	mu   sync.Mutex
	reqs []CompletionRequest
}

func (r *Recorder) add(req CompletionRequest) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return len(r.reqs) - 1
}

// Requests returns a snapshot of the recorded requests.
func (r *Recorder) Requests() []CompletionRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CompletionRequest(nil), r.reqs...)
}
