package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/embercove/ideavault/internal/model"
)

// ErrNotFound is returned when an idea is not in the cache.
var ErrNotFound = fmt.Errorf("idea not found in cache")

// UpsertIdea writes an idea into the mirror, keyed by Idea.Key().
func (c *Cache) UpsertIdea(ctx context.Context, idea model.Idea) error {
	tags, _ := json.Marshal(idea.Tags)
	urls, _ := json.Marshal(idea.URLs)

	var brainstorm sql.NullString
	if len(idea.LastBrainstorm) > 0 {
		brainstorm = sql.NullString{String: string(idea.LastBrainstorm), Valid: true}
	}

	_, err := c.ExecContext(ctx, `
		INSERT INTO ideas (key, server_id, client_id, title, content, tags, urls, archived, last_brainstorm, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			server_id = excluded.server_id,
			client_id = excluded.client_id,
			title = excluded.title,
			content = excluded.content,
			tags = excluded.tags,
			urls = excluded.urls,
			archived = excluded.archived,
			last_brainstorm = excluded.last_brainstorm,
			updated_at = excluded.updated_at`,
		idea.Key(), idea.ID, idea.ClientID, idea.Title, idea.Content,
		string(tags), string(urls), boolToInt(idea.Archived), brainstorm,
		idea.CreatedAt.Format(time.RFC3339), idea.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert idea: %w", err)
	}
	return nil
}

// GetIdea loads a single cached idea by key.
func (c *Cache) GetIdea(ctx context.Context, key string) (model.Idea, error) {
	row := c.QueryRowContext(ctx, `
		SELECT key, server_id, client_id, title, content, tags, urls, archived, last_brainstorm, created_at, updated_at
		FROM ideas WHERE key = ?`, key)

	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return model.Idea{}, ErrNotFound
	}
	return idea, err
}

// ListIdeas returns cached ideas, newest first. Archived ideas are excluded
// unless includeArchived is set.
func (c *Cache) ListIdeas(ctx context.Context, includeArchived bool) ([]model.Idea, error) {
	query := `
		SELECT key, server_id, client_id, title, content, tags, urls, archived, last_brainstorm, created_at, updated_at
		FROM ideas`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY created_at DESC, key DESC`

	rows, err := c.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []model.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// SetArchived flips the soft-delete flag on a cached idea.
func (c *Cache) SetArchived(ctx context.Context, key string, archived bool) error {
	res, err := c.ExecContext(ctx,
		`UPDATE ideas SET archived = ?, updated_at = ? WHERE key = ?`,
		boolToInt(archived), time.Now().Format(time.RFC3339), key)
	if err != nil {
		return fmt.Errorf("failed to archive idea: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIdea removes an idea from the mirror entirely. Only the permanent
// delete path uses this; archive never does.
func (c *Cache) DeleteIdea(ctx context.Context, key string) error {
	_, err := c.ExecContext(ctx, `DELETE FROM ideas WHERE key = ?`, key)
	return err
}

// AssignServerID rekeys an offline-created idea once the server has assigned
// its numeric ID. Queued actions recorded against the client UUID are
// rewritten in the same transaction, so the mapping survives a drain that
// gets interrupted before they replay.
func (c *Cache) AssignServerID(ctx context.Context, clientID string, serverID int64) error {
	tx, err := c.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	key := strconv.FormatInt(serverID, 10)
	if _, err := tx.ExecContext(ctx,
		`UPDATE ideas SET key = ?, server_id = ? WHERE key = ?`,
		key, serverID, clientID); err != nil {
		return fmt.Errorf("failed to assign server id: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, payload FROM pending_actions WHERE idea_key = ?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to read queued actions: %w", err)
	}

	type rewrite struct {
		id      int64
		payload string
	}
	var rewrites []rewrite
	for rows.Next() {
		var (
			id      int64
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			rows.Close()
			return err
		}
		var idea model.Idea
		if err := json.Unmarshal([]byte(payload), &idea); err != nil {
			rows.Close()
			return fmt.Errorf("failed to decode pending action %d: %w", id, err)
		}
		idea.ID = serverID
		updated, err := json.Marshal(idea)
		if err != nil {
			rows.Close()
			return err
		}
		rewrites = append(rewrites, rewrite{id: id, payload: string(updated)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range rewrites {
		if _, err := tx.ExecContext(ctx,
			`UPDATE pending_actions SET idea_key = ?, payload = ? WHERE id = ?`,
			key, r.payload, r.id); err != nil {
			return fmt.Errorf("failed to rekey pending action %d: %w", r.id, err)
		}
	}

	return tx.Commit()
}

// ReplaceAll swaps the entire mirror for the server's authoritative list.
// Runs in one transaction so a crash cannot leave a half-empty cache.
func (c *Cache) ReplaceAll(ctx context.Context, ideas []model.Idea) error {
	tx, err := c.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ideas`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	for _, idea := range ideas {
		tags, _ := json.Marshal(idea.Tags)
		urls, _ := json.Marshal(idea.URLs)

		var brainstorm sql.NullString
		if len(idea.LastBrainstorm) > 0 {
			brainstorm = sql.NullString{String: string(idea.LastBrainstorm), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO ideas (key, server_id, client_id, title, content, tags, urls, archived, last_brainstorm, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			idea.Key(), idea.ID, idea.ClientID, idea.Title, idea.Content,
			string(tags), string(urls), boolToInt(idea.Archived), brainstorm,
			idea.CreatedAt.Format(time.RFC3339), idea.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert idea %q: %w", idea.Key(), err)
		}
	}

	return tx.Commit()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanIdea(row scannable) (model.Idea, error) {
	var (
		idea           model.Idea
		key            string
		tags, urls     string
		archived       int
		brainstorm     sql.NullString
		created, updated string
	)

	err := row.Scan(&key, &idea.ID, &idea.ClientID, &idea.Title, &idea.Content,
		&tags, &urls, &archived, &brainstorm, &created, &updated)
	if err != nil {
		return model.Idea{}, err
	}

	_ = json.Unmarshal([]byte(tags), &idea.Tags)
	_ = json.Unmarshal([]byte(urls), &idea.URLs)
	idea.Archived = archived != 0
	if brainstorm.Valid {
		idea.LastBrainstorm = json.RawMessage(brainstorm.String)
	}
	idea.CreatedAt, _ = time.Parse(time.RFC3339, created)
	idea.UpdatedAt, _ = time.Parse(time.RFC3339, updated)

	return idea, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
