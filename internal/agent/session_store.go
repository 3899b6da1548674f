package agent

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/wayfarer/internal/domain"
)

// SessionStore keeps conversation threads between turns.
type SessionStore interface {
	// GetOrCreate returns a copy of the thread with the given id. An empty
	// or unknown id creates a new thread under a freshly minted id;
	// created reports which case applied.
	GetOrCreate(ctx context.Context, id string) (t *domain.Thread, created bool, err error)

	// Get returns a copy of a thread or ErrThreadNotFound.
	Get(ctx context.Context, id string) (*domain.Thread, error)

	// Append adds messages to the end of a thread, in order.
	Append(ctx context.Context, id string, msgs ...domain.Message) error

	// SetRouting overwrites a thread's routing state.
	SetRouting(ctx context.Context, id string, r domain.Routing) error

	// List returns thread summaries, most recently updated first.
	List(ctx context.Context) ([]domain.ThreadSummary, error)

	// EvictIdle deletes threads not updated since before and returns their
	// ids. Threads for which skip reports true are kept; skip may be nil.
	EvictIdle(ctx context.Context, before time.Time, skip func(id string) bool) ([]string, error)
}

// NewThreadID mints a thread identifier.
func NewThreadID() string { return uuid.NewString() }

// MemorySessionStore is an in-process SessionStore.
type MemorySessionStore struct {
	mu      sync.RWMutex
	threads map[string]*domain.Thread
	now     func() time.Time
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		threads: make(map[string]*domain.Thread),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemorySessionStore) GetOrCreate(_ context.Context, id string) (*domain.Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.threads[id]; ok && id != "" {
		t.UpdatedAt = s.now()
		return t.Clone(), false, nil
	}

	now := s.now()
	t := &domain.Thread{
		ID:        NewThreadID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.threads[t.ID] = t
	return t.Clone(), true, nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return t.Clone(), nil
}

func (s *MemorySessionStore) Append(_ context.Context, id string, msgs ...domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		return ErrThreadNotFound
	}
	t.Messages = append(t.Messages, msgs...)
	t.UpdatedAt = s.now()
	return nil
}

func (s *MemorySessionStore) SetRouting(_ context.Context, id string, r domain.Routing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		return ErrThreadNotFound
	}
	t.Routing = r
	t.UpdatedAt = s.now()
	return nil
}

func (s *MemorySessionStore) List(_ context.Context) ([]domain.ThreadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ThreadSummary, 0, len(s.threads))
	for _, t := range s.threads {
		out = append(out, domain.ThreadSummary{
			ID:           t.ID,
			MessageCount: len(t.Messages),
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemorySessionStore) EvictIdle(_ context.Context, before time.Time, skip func(id string) bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, t := range s.threads {
		if t.UpdatedAt.Before(before) && (skip == nil || !skip(id)) {
			delete(s.threads, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted, nil
}
