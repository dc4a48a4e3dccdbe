package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/embercove/ideavault/internal/cache"
	"github.com/embercove/ideavault/internal/logger"
)

// Result holds sync statistics
type Result struct {
	Replayed  int // Actions applied and discarded
	Dropped   int // Actions the server rejected, discarded without applying
	Remaining int // Actions left queued because the server became unreachable
	Refreshed int // Ideas pulled into the cache after a full drain
}

// Sync drains the pending-action queue in insertion order and, if the drain
// completes, refreshes the cache from the server's authoritative list.
//
// Failure policy (best effort, no backoff): an unreachable server stops the
// drain and leaves the current action and everything after it queued for the
// next attempt. A server rejection (4xx) is logged and dropped so one bad
// action cannot wedge the queue.
func (c *Client) Sync(ctx context.Context, store *cache.Cache) (*Result, error) {
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("not logged in")
	}

	result := &Result{}

	actions, err := store.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	logger.Debug("Starting replay", logger.F("queued", len(actions)))

	// Server IDs assigned to offline-created ideas during this drain.
	// AssignServerID rewrites the queued payloads on disk, but the actions
	// already loaded for this batch still carry the UUID, so they are
	// patched in memory too.
	assigned := make(map[string]int64)

	for i, action := range actions {
		idea := action.Idea
		if idea.ID == 0 {
			if id, ok := assigned[idea.ClientID]; ok {
				idea.ID = id
			}
		}

		var replayErr error
		switch action.Kind {
		case cache.ActionCreate:
			created, err := c.CreateIdea(ctx, idea)
			if err == nil {
				assigned[idea.ClientID] = created.ID
				if err := store.AssignServerID(ctx, idea.ClientID, created.ID); err != nil {
					logger.Warn("Failed to rekey idea after replay",
						logger.F("clientID", idea.ClientID), logger.F("error", err))
				}
				_ = store.UpsertIdea(ctx, created)
			}
			replayErr = err

		case cache.ActionUpdate:
			_, replayErr = c.UpdateIdea(ctx, idea)

		case cache.ActionArchive:
			_, replayErr = c.SetArchived(ctx, idea.ID, true)

		case cache.ActionUnarchive:
			_, replayErr = c.SetArchived(ctx, idea.ID, false)

		default:
			replayErr = &APIError{Status: 0, Message: "unknown action kind " + action.Kind}
		}

		if replayErr == nil {
			if err := store.Discard(ctx, action.ID); err != nil {
				return result, fmt.Errorf("failed to discard action %d: %w", action.ID, err)
			}
			result.Replayed++
			continue
		}

		if errors.Is(replayErr, ErrUnavailable) {
			// Offline again. Everything from here stays queued.
			result.Remaining = len(actions) - i
			logger.Info("Replay interrupted, server unreachable",
				logger.F("replayed", result.Replayed),
				logger.F("remaining", result.Remaining))
			return result, nil
		}

		// The server rejected this action; retrying is pointless.
		logger.Warn("Dropping rejected action",
			logger.F("id", action.ID),
			logger.F("kind", action.Kind),
			logger.F("ideaKey", action.IdeaKey),
			logger.F("error", replayErr))
		if err := store.Discard(ctx, action.ID); err != nil {
			return result, fmt.Errorf("failed to discard action %d: %w", action.ID, err)
		}
		result.Dropped++
	}

	// Queue fully drained: the server list is now authoritative.
	ideas, err := c.ListIdeas(ctx, true)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			logger.Info("Skipping cache refresh, server unreachable")
			return result, nil
		}
		return result, fmt.Errorf("refresh failed: %w", err)
	}

	if err := store.ReplaceAll(ctx, ideas); err != nil {
		return result, fmt.Errorf("failed to refresh cache: %w", err)
	}
	result.Refreshed = len(ideas)

	_ = c.UpdateSyncTime()

	logger.Info("Sync completed",
		logger.F("replayed", result.Replayed),
		logger.F("dropped", result.Dropped),
		logger.F("refreshed", result.Refreshed))

	return result, nil
}
