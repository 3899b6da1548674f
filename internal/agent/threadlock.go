package agent

import (
	"context"
	"sync"
)

// ThreadLocks serializes turns per thread id. Entries are reference
// counted and dropped once no holder or waiter remains.
type ThreadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	ch   chan struct{} // buffered(1); a value in it means locked
	refs int
}

// NewThreadLocks creates an empty lock table.
func NewThreadLocks() *ThreadLocks {
	return &ThreadLocks{locks: make(map[string]*threadLock)}
}

// Lock blocks until the lock for id is held or ctx is done. On success the
// returned func releases it and must be called exactly once.
func (l *ThreadLocks) Lock(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	tl, ok := l.locks[id]
	if !ok {
		tl = &threadLock{ch: make(chan struct{}, 1)}
		l.locks[id] = tl
	}
	tl.refs++
	l.mu.Unlock()

	select {
	case tl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(id, tl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-tl.ch
			l.release(id, tl)
		})
	}, nil
}

func (l *ThreadLocks) release(id string, tl *threadLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tl.refs--
	if tl.refs == 0 {
		delete(l.locks, id)
	}
}

// Held reports whether id has a holder or waiter.
func (l *ThreadLocks) Held(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.locks[id]
	return ok
}

// Len returns the number of ids with a holder or waiter.
func (l *ThreadLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
