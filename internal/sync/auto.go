package sync

import (
	"context"
	"sync"
	"time"

	"github.com/embercove/ideavault/internal/cache"
	"github.com/embercove/ideavault/internal/logger"
)

// AutoSync watches for connectivity returning and replays the queue when it
// does. A debounce keeps a burst of edits from triggering one sync per edit.
type AutoSync struct {
	client       *Client
	store        *cache.Cache
	debounceTime time.Duration
	pollInterval time.Duration
	pending      bool
	mu           sync.Mutex
	stopCh       chan struct{}
	onSynced     func(*Result) // Callback after a sync that changed anything
}

// NewAutoSync creates the background sync manager and starts its poll loop.
func NewAutoSync(client *Client, store *cache.Cache) *AutoSync {
	a := &AutoSync{
		client:       client,
		store:        store,
		debounceTime: 5 * time.Second,
		pollInterval: 30 * time.Second,
		stopCh:       make(chan struct{}),
	}

	go a.pollLoop()

	return a
}

// SetOnSynced sets a callback invoked after a sync replayed or pulled changes.
func (a *AutoSync) SetOnSynced(callback func(*Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSynced = callback
}

// pollLoop periodically checks connectivity and syncs when the queue has
// work, or when the last refresh is stale.
func (a *AutoSync) pollLoop() {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.client.IsLoggedIn() {
				continue
			}

			ctx := context.Background()
			queued, err := a.store.QueueLen(ctx)
			if err != nil {
				continue
			}

			if queued == 0 && !a.client.ShouldAutoSync() {
				continue
			}

			if err := a.client.Ping(ctx); err != nil {
				logger.Debug("Auto-sync skipped, still offline")
				continue
			}

			a.performSync()
		case <-a.stopCh:
			return
		}
	}
}

// TriggerSync marks that a sync is needed (debounced)
func (a *AutoSync) TriggerSync() {
	if !a.client.IsLoggedIn() {
		return
	}

	a.mu.Lock()
	if !a.pending {
		a.pending = true
		go a.debouncedSync()
	}
	a.mu.Unlock()
}

func (a *AutoSync) debouncedSync() {
	timer := time.NewTimer(a.debounceTime)
	defer timer.Stop()

	select {
	case <-timer.C:
		a.performSync()
	case <-a.stopCh:
		return
	}
}

func (a *AutoSync) performSync() {
	a.mu.Lock()
	a.pending = false
	callback := a.onSynced
	a.mu.Unlock()

	result, err := a.client.Sync(context.Background(), a.store)
	if err != nil {
		logger.Debug("Auto-sync failed", logger.F("error", err))
		return
	}

	if callback != nil && (result.Replayed > 0 || result.Refreshed > 0) {
		callback(result)
	}
}

// Stop stops the auto-sync manager
func (a *AutoSync) Stop() {
	close(a.stopCh)
}

// IsPending returns true if a debounced sync is scheduled
func (a *AutoSync) IsPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}
