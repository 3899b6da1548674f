package agent

import (
	"context"
	"time"

	"github.com/soyeahso/wayfarer/internal/hooks"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

// Janitor evicts threads that have been idle longer than a TTL.
type Janitor struct {
	Store    SessionStore
	TTL      time.Duration
	Interval time.Duration
	Locks    *ThreadLocks     // optional; threads with a turn in flight are kept
	Hooks    *hooks.Manager   // optional
	Metrics  *observe.Metrics // optional
	Log      *logging.Logger
}

// Sweep runs one eviction pass and returns the evicted ids.
func (j *Janitor) Sweep(ctx context.Context, now time.Time) ([]string, error) {
	var skip func(string) bool
	if j.Locks != nil {
		skip = j.Locks.Held
	}
	ids, err := j.Store.EvictIdle(ctx, now.Add(-j.TTL), skip)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if j.Metrics != nil {
		j.Metrics.ThreadsEvicted.Add(ctx, int64(len(ids)))
	}
	for _, id := range ids {
		j.Hooks.Emit(ctx, hooks.EventThreadEvicted, map[string]any{"threadId": id})
	}
	j.Log.Info().Int("count", len(ids)).Dur("ttl", j.TTL).Msg("evicted idle threads")
	return ids, nil
}

// Run sweeps every Interval until ctx is done. A non-positive TTL disables
// eviction.
func (j *Janitor) Run(ctx context.Context) {
	if j.TTL <= 0 {
		return
	}
	interval := j.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := j.Sweep(ctx, now.UTC()); err != nil {
				j.Log.Warn().Err(err).Msg("thread eviction failed")
			}
		}
	}
}
