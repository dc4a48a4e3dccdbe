// Package ideas is the client's data-access layer. Every operation decides
// between the network and the local cache: reads fall back to the cache when
// the server is unreachable, writes are applied to the cache and queued for
// replay.
package ideas

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/embercove/ideavault/internal/brainstorm"
	"github.com/embercove/ideavault/internal/cache"
	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/model"
	"github.com/embercove/ideavault/internal/sync"
)

// Service wires the remote client and the local cache together.
type Service struct {
	client *sync.Client
	store  *cache.Cache
}

// NewService creates the data-access service. The client may be logged out;
// the service then works purely against the cache.
func NewService(client *sync.Client, store *cache.Cache) *Service {
	return &Service{client: client, store: store}
}

// offline reports whether an error means the server could not be reached.
func offline(err error) bool {
	return errors.Is(err, sync.ErrUnavailable)
}

func (s *Service) remoteReady() bool {
	return s.client != nil && s.client.IsLoggedIn()
}

// ListResult carries the ideas plus where they came from.
type ListResult struct {
	Ideas     []model.Idea
	FromCache bool
}

// List returns ideas, newest first, excluding archived unless asked.
// The remote list wins when reachable; otherwise the cache answers silently.
func (s *Service) List(ctx context.Context, includeArchived bool) (ListResult, error) {
	if !s.remoteReady() {
		ideas, err := s.store.ListIdeas(ctx, includeArchived)
		return ListResult{Ideas: ideas, FromCache: true}, err
	}

	ideas, err := s.client.ListIdeas(ctx, includeArchived)
	if offline(err) {
		logger.Debug("List falling back to cache", logger.F("error", err))
		cached, cacheErr := s.store.ListIdeas(ctx, includeArchived)
		return ListResult{Ideas: cached, FromCache: true}, cacheErr
	}
	if err != nil {
		return ListResult{}, err
	}

	// Mirror the fresh list, but never clobber queued offline work. A
	// filtered list upserts row by row so cached archived ideas survive;
	// only the full list may replace the mirror wholesale. Rows the server
	// no longer has linger until the next sync refresh.
	if queued, qErr := s.store.QueueLen(ctx); qErr == nil && queued == 0 {
		if includeArchived {
			if mErr := s.store.ReplaceAll(ctx, ideas); mErr != nil {
				logger.Warn("Failed to mirror idea list", logger.F("error", mErr))
			}
		} else {
			for _, idea := range ideas {
				if mErr := s.store.UpsertIdea(ctx, idea); mErr != nil {
					logger.Warn("Failed to mirror idea", logger.F("key", idea.Key()), logger.F("error", mErr))
					break
				}
			}
		}
	}

	return ListResult{Ideas: ideas}, nil
}

// Get loads one idea by cache key (server ID or client UUID).
func (s *Service) Get(ctx context.Context, key string) (model.Idea, error) {
	idea, err := s.store.GetIdea(ctx, key)
	if err == nil {
		return idea, nil
	}
	if !errors.Is(err, cache.ErrNotFound) || !s.remoteReady() {
		return model.Idea{}, err
	}

	id, parseErr := strconv.ParseInt(key, 10, 64)
	if parseErr != nil {
		return model.Idea{}, cache.ErrNotFound
	}

	remote, err := s.client.GetIdea(ctx, id)
	if err != nil {
		return model.Idea{}, err
	}
	_ = s.store.UpsertIdea(ctx, remote)
	return remote, nil
}

// Create records a new idea. Returns the stored idea and whether the write
// was queued for later replay instead of reaching the server.
func (s *Service) Create(ctx context.Context, title, content string, tags, urls []string) (model.Idea, bool, error) {
	idea := model.NewIdea(uuid.New().String(), title, content)
	if len(tags) > 0 {
		idea.Tags = tags
	}
	if len(urls) > 0 {
		idea.URLs = urls
	}
	if err := idea.Validate(); err != nil {
		return model.Idea{}, false, err
	}

	if s.remoteReady() {
		created, err := s.client.CreateIdea(ctx, idea)
		if err == nil {
			if mErr := s.store.UpsertIdea(ctx, created); mErr != nil {
				logger.Warn("Failed to mirror created idea", logger.F("error", mErr))
			}
			return created, false, nil
		}
		if !offline(err) {
			return model.Idea{}, false, err
		}
	}

	// Offline: optimistic local write plus a queued replay.
	if err := s.store.UpsertIdea(ctx, idea); err != nil {
		return model.Idea{}, false, err
	}
	if err := s.store.Enqueue(ctx, cache.ActionCreate, idea); err != nil {
		return model.Idea{}, false, err
	}
	return idea, true, nil
}

// Update rewrites title, content, tags and urls of an existing idea.
func (s *Service) Update(ctx context.Context, idea model.Idea) (model.Idea, bool, error) {
	idea.Title = model.NewIdea("", idea.Title, "").Title // trim
	if err := idea.Validate(); err != nil {
		return model.Idea{}, false, err
	}
	idea.UpdatedAt = time.Now()

	// Ideas created offline have no server ID yet; their update can only be
	// queued behind the pending create.
	if s.remoteReady() && idea.ID > 0 {
		updated, err := s.client.UpdateIdea(ctx, idea)
		if err == nil {
			if mErr := s.store.UpsertIdea(ctx, updated); mErr != nil {
				logger.Warn("Failed to mirror updated idea", logger.F("error", mErr))
			}
			return updated, false, nil
		}
		if !offline(err) {
			return model.Idea{}, false, err
		}
	}

	if err := s.store.UpsertIdea(ctx, idea); err != nil {
		return model.Idea{}, false, err
	}
	if err := s.store.Enqueue(ctx, cache.ActionUpdate, idea); err != nil {
		return model.Idea{}, false, err
	}
	return idea, true, nil
}

// SetArchived toggles the soft-delete flag. Archived ideas stay stored and
// reappear when unarchived.
func (s *Service) SetArchived(ctx context.Context, key string, archived bool) (bool, error) {
	idea, err := s.store.GetIdea(ctx, key)
	if err != nil {
		return false, err
	}

	if s.remoteReady() && idea.ID > 0 {
		updated, err := s.client.SetArchived(ctx, idea.ID, archived)
		if err == nil {
			if mErr := s.store.UpsertIdea(ctx, updated); mErr != nil {
				logger.Warn("Failed to mirror archived idea", logger.F("error", mErr))
			}
			return false, nil
		}
		if !offline(err) {
			return false, err
		}
	}

	if err := s.store.SetArchived(ctx, key, archived); err != nil {
		return false, err
	}
	idea.Archived = archived
	kind := cache.ActionArchive
	if !archived {
		kind = cache.ActionUnarchive
	}
	if err := s.store.Enqueue(ctx, kind, idea); err != nil {
		return false, err
	}
	return true, nil
}

// Delete permanently removes an idea. This path requires connectivity; it is
// deliberately not queueable, archive is the offline-safe way to hide ideas.
func (s *Service) Delete(ctx context.Context, key string) error {
	idea, err := s.store.GetIdea(ctx, key)
	if err != nil {
		return err
	}

	if idea.ID > 0 {
		if !s.remoteReady() {
			return fmt.Errorf("permanent delete requires a login; archive instead")
		}
		if err := s.client.DeleteIdea(ctx, idea.ID); err != nil {
			return err
		}
	}

	return s.store.DeleteIdea(ctx, key)
}

// Sync replays the queue and refreshes the cache.
func (s *Service) Sync(ctx context.Context) (*sync.Result, error) {
	if !s.remoteReady() {
		return nil, fmt.Errorf("not logged in")
	}
	return s.client.Sync(ctx, s.store)
}

// QueueLen reports how many offline mutations await replay.
func (s *Service) QueueLen(ctx context.Context) (int, error) {
	return s.store.QueueLen(ctx)
}

// Brainstorm runs the server-side AI brainstorm for an idea and mirrors the
// result onto the cached copy. It never queues; the feature needs the server.
func (s *Service) Brainstorm(ctx context.Context, key string) (*brainstorm.Result, error) {
	idea, err := s.store.GetIdea(ctx, key)
	if err != nil {
		return nil, err
	}
	if idea.ID == 0 {
		return nil, fmt.Errorf("idea has not been synced yet")
	}
	if !s.remoteReady() {
		return nil, fmt.Errorf("brainstorm requires a login")
	}

	result, err := s.client.Brainstorm(ctx, idea.ID)
	if err != nil {
		return nil, err
	}

	if remote, gErr := s.client.GetIdea(ctx, idea.ID); gErr == nil {
		_ = s.store.UpsertIdea(ctx, remote)
	}

	return result, nil
}
