package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/wayfarer/internal/domain"
)

// SearchHit is one message matching a full-text query.
type SearchHit struct {
	ThreadID  string      `json:"threadId"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name,omitempty"`
	Snippet   string      `json:"snippet"`
	Timestamp time.Time   `json:"timestamp"`
	Rank      float64     `json:"rank"`
}

// Search finds messages matching an FTS5 query, best match first.
// A limit of 0 defaults to 20.
func (s *ThreadStore) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT m.thread_id, m.role, m.name,
		        snippet(messages_fts, 0, '[', ']', '…', 12),
		        m.timestamp, rank
		 FROM messages_fts
		 JOIN messages m ON m.id = messages_fts.rowid
		 WHERE messages_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		ftsQuery(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var (
			h    SearchHit
			role string
			ts   int64
		)
		if err := rows.Scan(&h.ThreadID, &role, &h.Name, &h.Snippet, &ts, &h.Rank); err != nil {
			return nil, err
		}
		h.Role = domain.Role(role)
		h.Timestamp = fromNanos(ts)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ftsQuery quotes each term so user input cannot inject FTS5 syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
