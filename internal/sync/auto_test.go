package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/embercove/ideavault/internal/cache"
	"github.com/embercove/ideavault/internal/model"
)

// fakeRemote counts the mutations an AutoSync-driven drain sends and can be
// flipped down to answer 503 to everything.
type fakeRemote struct {
	creates atomic.Int32
	down    atomic.Bool
}

func newAutoSyncFixture(t *testing.T) (*AutoSync, *cache.Cache, *fakeRemote) {
	t.Helper()
	remote := &fakeRemote{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v1/ideas", func(w http.ResponseWriter, r *http.Request) {
		var idea model.Idea
		_ = json.NewDecoder(r.Body).Decode(&idea)
		idea.ID = int64(remote.creates.Add(1))
		idea.CreatedAt = time.Now()
		idea.UpdatedAt = idea.CreatedAt
		_ = json.NewEncoder(w).Encode(idea)
	})
	mux.HandleFunc("GET /api/v1/ideas", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ideas": []model.Idea{}})
	})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if remote.down.Load() {
			http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	session, err := json.Marshal(Config{
		ServerURL:  ts.URL,
		Token:      "test-token",
		UserID:     "u1",
		LastSyncAt: time.Now().Unix(),
	})
	require.NoError(t, err)
	sessionPath := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(sessionPath, session, 0600))

	store, err := cache.Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// Built by hand so the poll loop only runs when a test starts it.
	a := &AutoSync{
		client:       NewClientAt(sessionPath),
		store:        store,
		debounceTime: 50 * time.Millisecond,
		pollInterval: time.Hour,
		stopCh:       make(chan struct{}),
	}
	t.Cleanup(a.Stop)

	return a, store, remote
}

func enqueueCreate(t *testing.T, store *cache.Cache, clientID, title string) {
	t.Helper()
	ctx := context.Background()
	idea := model.NewIdea(clientID, title, "")
	require.NoError(t, store.UpsertIdea(ctx, idea))
	require.NoError(t, store.Enqueue(ctx, cache.ActionCreate, idea))
}

func TestTriggerSyncCoalescesBursts(t *testing.T) {
	a, store, remote := newAutoSyncFixture(t)
	ctx := context.Background()

	enqueueCreate(t, store, "uuid-1", "burst idea")

	synced := make(chan *Result, 1)
	a.SetOnSynced(func(r *Result) { synced <- r })

	// A burst of edits schedules one debounced sync, not one per edit.
	for i := 0; i < 5; i++ {
		a.TriggerSync()
	}
	require.True(t, a.IsPending())

	select {
	case r := <-synced:
		require.Equal(t, 1, r.Replayed)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced sync never ran")
	}

	require.Equal(t, int32(1), remote.creates.Load())
	require.False(t, a.IsPending())

	n, err := store.QueueLen(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPollLoopReplaysQueueWhenServerReturns(t *testing.T) {
	a, store, remote := newAutoSyncFixture(t)

	enqueueCreate(t, store, "uuid-2", "poll idea")

	synced := make(chan *Result, 1)
	a.SetOnSynced(func(r *Result) { synced <- r })

	remote.down.Store(true)
	a.pollInterval = 20 * time.Millisecond
	go a.pollLoop()

	// While the server answers 503 the poll loop keeps skipping.
	time.Sleep(120 * time.Millisecond)
	require.Zero(t, remote.creates.Load())

	remote.down.Store(false)

	select {
	case r := <-synced:
		require.Equal(t, 1, r.Replayed)
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop never drained the queue")
	}
	require.Equal(t, int32(1), remote.creates.Load())
}

func TestTriggerSyncIgnoredWhenLoggedOut(t *testing.T) {
	a, _, _ := newAutoSyncFixture(t)
	a.client = NewClientAt(filepath.Join(t.TempDir(), "session.json"))

	a.TriggerSync()
	require.False(t, a.IsPending())
}
