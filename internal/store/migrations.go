package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// Timestamps are stored as Unix nanoseconds so they order and compare
// numerically.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create threads and messages",
		SQL: `
			CREATE TABLE threads (
				id             TEXT PRIMARY KEY,
				next           TEXT NOT NULL DEFAULT '',
				pending_query  TEXT NOT NULL DEFAULT '',
				reasoning      TEXT NOT NULL DEFAULT '',
				created_at     INTEGER NOT NULL,
				updated_at     INTEGER NOT NULL
			);

			CREATE INDEX idx_threads_updated ON threads (updated_at);

			CREATE TABLE messages (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				thread_id     TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
				role          TEXT NOT NULL,
				content       TEXT NOT NULL,
				name          TEXT NOT NULL DEFAULT '',
				tool_call_id  TEXT NOT NULL DEFAULT '',
				tool_calls    TEXT,
				timestamp     INTEGER NOT NULL
			);

			CREATE INDEX idx_messages_thread ON messages (thread_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "full-text index over messages",
		SQL: `
			CREATE VIRTUAL TABLE messages_fts USING fts5(
				content,
				content='messages',
				content_rowid='id'
			);

			INSERT INTO messages_fts(rowid, content) SELECT id, content FROM messages;

			CREATE TRIGGER messages_ai AFTER INSERT ON messages BEGIN
				INSERT INTO messages_fts(rowid, content) VALUES (new.id, new.content);
			END;

			CREATE TRIGGER messages_ad AFTER DELETE ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, content)
				VALUES ('delete', old.id, old.content);
			END;
		`,
	},
}
