package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/embercove/ideavault/internal/model"
)

// Kinds of queued mutations.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionArchive   = "archive"
	ActionUnarchive = "unarchive"
)

// PendingAction is one recorded offline mutation. The Idea field is the
// snapshot of the idea at the time the action was queued.
type PendingAction struct {
	ID       int64
	Kind     string
	IdeaKey  string
	Idea     model.Idea
	QueuedAt time.Time
}

// Enqueue records a mutation for later replay.
func (c *Cache) Enqueue(ctx context.Context, kind string, idea model.Idea) error {
	payload, err := json.Marshal(idea)
	if err != nil {
		return fmt.Errorf("failed to encode pending action: %w", err)
	}

	_, err = c.ExecContext(ctx, `
		INSERT INTO pending_actions (kind, idea_key, payload, queued_at)
		VALUES (?, ?, ?, ?)`,
		kind, idea.Key(), string(payload), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to enqueue action: %w", err)
	}
	return nil
}

// Pending returns queued actions in insertion order.
func (c *Cache) Pending(ctx context.Context) ([]PendingAction, error) {
	rows, err := c.QueryContext(ctx, `
		SELECT id, kind, idea_key, payload, queued_at
		FROM pending_actions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	defer rows.Close()

	var actions []PendingAction
	for rows.Next() {
		var (
			a        PendingAction
			payload  string
			queuedAt string
		)
		if err := rows.Scan(&a.ID, &a.Kind, &a.IdeaKey, &payload, &queuedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &a.Idea); err != nil {
			return nil, fmt.Errorf("failed to decode pending action %d: %w", a.ID, err)
		}
		a.QueuedAt, _ = time.Parse(time.RFC3339, queuedAt)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Discard removes a replayed (or rejected) action from the queue.
func (c *Cache) Discard(ctx context.Context, id int64) error {
	_, err := c.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id)
	return err
}

// QueueLen returns the number of actions awaiting replay.
func (c *Cache) QueueLen(ctx context.Context) (int, error) {
	var n int
	err := c.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n)
	return n, err
}
