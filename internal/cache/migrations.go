package cache

import "fmt"

// migrate runs all cache migrations
func (c *Cache) migrate() error {
	migrations := []string{
		migrationCreateIdeas,
		migrationCreatePendingActions,
	}

	for i, m := range migrations {
		if _, err := c.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// The key column holds the server ID in decimal once assigned, otherwise the
// client UUID of an idea created offline. Tags and URLs are JSON arrays.
const migrationCreateIdeas = `
CREATE TABLE IF NOT EXISTS ideas (
    key TEXT PRIMARY KEY,
    server_id INTEGER NOT NULL DEFAULT 0,
    client_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    urls TEXT NOT NULL DEFAULT '[]',
    archived INTEGER NOT NULL DEFAULT 0,
    last_brainstorm TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ideas_archived ON ideas(archived);
`

// AUTOINCREMENT gives the queue its insertion order; replay walks ids ascending.
const migrationCreatePendingActions = `
CREATE TABLE IF NOT EXISTS pending_actions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    idea_key TEXT NOT NULL,
    payload TEXT NOT NULL,
    queued_at TEXT NOT NULL
);
`
