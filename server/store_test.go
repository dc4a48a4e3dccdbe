package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/embercove/ideavault/internal/model"
)

const testUserID = "4f1c2b13-9f64-4c26-8f0a-3a8b21d9a001"

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func ideaRows(ideas ...model.Idea) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "client_id", "title", "content",
		"tags", "urls", "archived", "last_brainstorm", "created_at", "updated_at",
	})
	for _, idea := range ideas {
		tags, _ := json.Marshal(idea.Tags)
		urls, _ := json.Marshal(idea.URLs)
		rows.AddRow(idea.ID, testUserID, idea.ClientID, idea.Title, idea.Content,
			string(tags), string(urls), idea.Archived, nil, time.Now(), time.Now())
	}
	return rows
}

func TestListIdeasExcludesArchivedByDefault(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 AND archived = FALSE ORDER BY created_at DESC, id DESC`)).
		WithArgs(testUserID).
		WillReturnRows(ideaRows(
			model.Idea{ID: 2, Title: "solar shed", Tags: []string{"home", "energy"}},
			model.Idea{ID: 1, Title: "reading app"},
		))

	ideas, err := store.ListIdeas(context.Background(), testUserID, false)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	require.Equal(t, "solar shed", ideas[0].Title)
	require.Equal(t, []string{"home", "energy"}, []string(ideas[0].Tags))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListIdeasIncludeArchived(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs(testUserID).
		WillReturnRows(ideaRows(
			model.Idea{ID: 3, Title: "shelved", Archived: true},
			model.Idea{ID: 1, Title: "active"},
		))

	ideas, err := store.ListIdeas(context.Background(), testUserID, true)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	require.True(t, ideas[0].Archived)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIdeaNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 AND id = $2`)).
		WithArgs(testUserID, int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetIdea(context.Background(), testUserID, 9)
	require.ErrorIs(t, err, ErrIdeaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIdeaKeepsClientID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO ideas`)).
		WithArgs(testUserID, "offline-uuid-1", "kite cam", "strap a camera to a kite",
			`["outdoors"]`, `[]`).
		WillReturnRows(ideaRows(model.Idea{
			ID: 7, ClientID: "offline-uuid-1", Title: "kite cam",
			Content: "strap a camera to a kite", Tags: []string{"outdoors"},
		}))

	idea, err := store.CreateIdea(context.Background(), testUserID, model.Idea{
		ClientID: "offline-uuid-1",
		Title:    "kite cam",
		Content:  "strap a camera to a kite",
		Tags:     []string{"outdoors"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), idea.ID)
	require.Equal(t, "offline-uuid-1", idea.ClientID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIdeaGeneratesClientID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO ideas`)).
		WithArgs(testUserID, sqlmock.AnyArg(), "no client id", "", `[]`, `[]`).
		WillReturnRows(ideaRows(model.Idea{ID: 1, ClientID: "generated", Title: "no client id"}))

	idea, err := store.CreateIdea(context.Background(), testUserID, model.Idea{Title: "no client id"})
	require.NoError(t, err)
	require.Equal(t, int64(1), idea.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetArchivedNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE ideas SET archived = $3`)).
		WithArgs(testUserID, int64(42), true).
		WillReturnError(sql.ErrNoRows)

	_, err := store.SetArchived(context.Background(), testUserID, 42, true)
	require.ErrorIs(t, err, ErrIdeaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteIdeaNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ideas WHERE user_id = $1 AND id = $2`)).
		WithArgs(testUserID, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteIdea(context.Background(), testUserID, 5)
	require.ErrorIs(t, err, ErrIdeaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBrainstorm(t *testing.T) {
	store, mock := newMockStore(t)

	raw := json.RawMessage(`{"summary":"promising"}`)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE ideas SET last_brainstorm = $3`)).
		WithArgs(testUserID, int64(3), string(raw)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveBrainstorm(context.Background(), testUserID, 3, raw))
	require.NoError(t, mock.ExpectationsWereMet())
}
