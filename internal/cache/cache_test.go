package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/embercove/ideavault/internal/model"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func TestListExcludesArchivedByDefault(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	active := model.NewIdea("c1", "keep me", "")
	archived := model.NewIdea("c2", "old idea", "")
	archived.Archived = true

	require.NoError(t, c.UpsertIdea(ctx, active))
	require.NoError(t, c.UpsertIdea(ctx, archived))

	ideas, err := c.ListIdeas(ctx, false)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	require.Equal(t, "keep me", ideas[0].Title)

	all, err := c.ListIdeas(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestArchiveIsSoftDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	idea := model.NewIdea("c1", "still here", "")
	require.NoError(t, c.UpsertIdea(ctx, idea))
	require.NoError(t, c.SetArchived(ctx, "c1", true))

	got, err := c.GetIdea(ctx, "c1")
	require.NoError(t, err)
	require.True(t, got.Archived)

	require.NoError(t, c.SetArchived(ctx, "c1", false))
	got, err = c.GetIdea(ctx, "c1")
	require.NoError(t, err)
	require.False(t, got.Archived)

	require.ErrorIs(t, c.SetArchived(ctx, "missing", true), ErrNotFound)
}

func TestQueuePreservesInsertionOrder(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	first := model.NewIdea("c1", "first", "")
	second := model.NewIdea("c2", "second", "")
	third := model.NewIdea("c1", "first edited", "")

	require.NoError(t, c.Enqueue(ctx, ActionCreate, first))
	require.NoError(t, c.Enqueue(ctx, ActionCreate, second))
	require.NoError(t, c.Enqueue(ctx, ActionUpdate, third))

	actions, err := c.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	require.Equal(t, ActionCreate, actions[0].Kind)
	require.Equal(t, "first", actions[0].Idea.Title)
	require.Equal(t, "second", actions[1].Idea.Title)
	require.Equal(t, ActionUpdate, actions[2].Kind)
	require.Equal(t, "first edited", actions[2].Idea.Title)
}

func TestDiscardRemovesOnlyThatAction(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Enqueue(ctx, ActionCreate, model.NewIdea("c1", "a", "")))
	require.NoError(t, c.Enqueue(ctx, ActionArchive, model.NewIdea("c2", "b", "")))

	actions, err := c.Pending(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Discard(ctx, actions[0].ID))

	remaining, err := c.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, ActionArchive, remaining[0].Kind)

	n, err := c.QueueLen(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestAssignServerIDRekeysIdea(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	idea := model.NewIdea("temp-uuid", "offline idea", "")
	require.NoError(t, c.UpsertIdea(ctx, idea))
	require.NoError(t, c.AssignServerID(ctx, "temp-uuid", 77))

	_, err := c.GetIdea(ctx, "temp-uuid")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := c.GetIdea(ctx, "77")
	require.NoError(t, err)
	require.Equal(t, int64(77), got.ID)
	require.Equal(t, "offline idea", got.Title)
}

func TestAssignServerIDRekeysQueuedActions(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	idea := model.NewIdea("temp-uuid", "offline idea", "v1")
	require.NoError(t, c.UpsertIdea(ctx, idea))
	require.NoError(t, c.Enqueue(ctx, ActionCreate, idea))

	edited := idea
	edited.Content = "v2"
	require.NoError(t, c.Enqueue(ctx, ActionUpdate, edited))

	other := model.NewIdea("other-uuid", "untouched", "")
	require.NoError(t, c.Enqueue(ctx, ActionCreate, other))

	require.NoError(t, c.AssignServerID(ctx, "temp-uuid", 42))

	actions, err := c.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 3)

	require.Equal(t, "42", actions[0].IdeaKey)
	require.Equal(t, int64(42), actions[0].Idea.ID)
	require.Equal(t, "42", actions[1].IdeaKey)
	require.Equal(t, int64(42), actions[1].Idea.ID)
	require.Equal(t, "v2", actions[1].Idea.Content)

	require.Equal(t, "other-uuid", actions[2].IdeaKey)
	require.Zero(t, actions[2].Idea.ID)
}

func TestReplaceAllSwapsMirror(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.UpsertIdea(ctx, model.NewIdea("stale", "stale entry", "")))

	fresh := model.Idea{
		ID:        5,
		Title:     "authoritative",
		Tags:      []string{"go", "sync"},
		URLs:      []string{"https://example.com"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, c.ReplaceAll(ctx, []model.Idea{fresh}))

	ideas, err := c.ListIdeas(ctx, true)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	require.Equal(t, "authoritative", ideas[0].Title)
	require.Equal(t, []string{"go", "sync"}, ideas[0].Tags)
}
