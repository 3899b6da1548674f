package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/domain"
)

// ThreadStore implements agent.SessionStore backed by SQLite.
type ThreadStore struct {
	db  *DB
	now func() time.Time
}

var _ agent.SessionStore = (*ThreadStore)(nil)

// NewThreadStore creates a thread store using the given database.
func NewThreadStore(db *DB) *ThreadStore {
	return &ThreadStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func nanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// GetOrCreate loads the thread with the given id, or creates one under a
// fresh id when id is empty or unknown.
func (s *ThreadStore) GetOrCreate(ctx context.Context, id string) (*domain.Thread, bool, error) {
	if id != "" {
		t, err := s.Get(ctx, id)
		if err == nil {
			// Loading a thread counts as activity for idle eviction.
			now := s.now()
			if _, err := s.db.sql.ExecContext(ctx,
				`UPDATE threads SET updated_at = ? WHERE id = ?`, nanos(now), id,
			); err != nil {
				return nil, false, fmt.Errorf("touching thread %s: %w", id, err)
			}
			t.UpdatedAt = now
			return t, false, nil
		}
		if !errors.Is(err, agent.ErrThreadNotFound) {
			return nil, false, err
		}
	}

	now := s.now()
	t := &domain.Thread{ID: agent.NewThreadID(), CreatedAt: now, UpdatedAt: now}
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO threads (id, created_at, updated_at) VALUES (?, ?, ?)`,
		t.ID, nanos(now), nanos(now),
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating thread: %w", err)
	}
	s.db.log.Debug().Str("threadId", t.ID).Msg("thread created")
	return t, true, nil
}

// Get returns a thread with its full history, or agent.ErrThreadNotFound.
func (s *ThreadStore) Get(ctx context.Context, id string) (*domain.Thread, error) {
	var (
		t                domain.Thread
		next             string
		created, updated int64
	)
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT id, next, pending_query, reasoning, created_at, updated_at
		 FROM threads WHERE id = ?`, id,
	).Scan(&t.ID, &next, &t.Routing.PendingQuery, &t.Routing.Reasoning, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, agent.ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", id, err)
	}
	t.Routing.Next = domain.Label(next)
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(updated)

	if t.Messages, err = s.loadMessages(ctx, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// Append adds messages to a thread in one transaction.
func (s *ThreadStore) Append(ctx context.Context, id string, msgs ...domain.Message) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touch(ctx, tx, id, s.now()); err != nil {
		return err
	}

	for _, msg := range msgs {
		var toolCalls sql.NullString
		if len(msg.ToolCalls) > 0 {
			data, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("encoding tool calls: %w", err)
			}
			toolCalls = sql.NullString{String: string(data), Valid: true}
		}

		ts := msg.Timestamp
		if ts.IsZero() {
			ts = s.now()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (thread_id, role, content, name, tool_call_id, tool_calls, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, string(msg.Role), msg.Content, msg.Name, msg.ToolCallID, toolCalls, nanos(ts),
		); err != nil {
			return fmt.Errorf("appending to thread %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// SetRouting overwrites a thread's routing state.
func (s *ThreadStore) SetRouting(ctx context.Context, id string, r domain.Routing) error {
	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE threads SET next = ?, pending_query = ?, reasoning = ?, updated_at = ? WHERE id = ?`,
		string(r.Next), r.PendingQuery, r.Reasoning, nanos(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating routing of %s: %w", id, err)
	}
	return mustAffect(res)
}

// List returns thread summaries, most recently updated first.
func (s *ThreadStore) List(ctx context.Context) ([]domain.ThreadSummary, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT t.id, t.created_at, t.updated_at, COUNT(m.id)
		 FROM threads t LEFT JOIN messages m ON m.thread_id = t.id
		 GROUP BY t.id
		 ORDER BY t.updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ThreadSummary
	for rows.Next() {
		var (
			sum              domain.ThreadSummary
			created, updated int64
		)
		if err := rows.Scan(&sum.ID, &created, &updated, &sum.MessageCount); err != nil {
			return nil, err
		}
		sum.CreatedAt = fromNanos(created)
		sum.UpdatedAt = fromNanos(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// EvictIdle deletes threads last updated before the cutoff, except those
// skip reports true for.
func (s *ThreadStore) EvictIdle(ctx context.Context, before time.Time, skip func(id string) bool) ([]string, error) {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM threads WHERE updated_at < ? ORDER BY id`, nanos(before))
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		if skip != nil && skip(id) {
			continue
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE thread_id = ?`, id); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		s.db.log.Info().Int("count", len(ids)).Msg("evicted idle threads")
	}
	return ids, nil
}

func (s *ThreadStore) loadMessages(ctx context.Context, id string) ([]domain.Message, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT role, content, name, tool_call_id, tool_calls, timestamp
		 FROM messages WHERE thread_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages of %s: %w", id, err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var (
			msg       domain.Message
			role      string
			toolCalls sql.NullString
			ts        int64
		)
		if err := rows.Scan(&role, &msg.Content, &msg.Name, &msg.ToolCallID, &toolCalls, &ts); err != nil {
			return nil, err
		}
		msg.Role = domain.Role(role)
		msg.Timestamp = fromNanos(ts)
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("decoding tool calls: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func touch(ctx context.Context, tx *sql.Tx, id string, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE threads SET updated_at = ? WHERE id = ?`, nanos(now), id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return agent.ErrThreadNotFound
	}
	return nil
}
