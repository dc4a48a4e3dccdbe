package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/embercove/ideavault/internal/brainstorm"
	"github.com/embercove/ideavault/internal/model"
)

const testToken = "deadbeefdeadbeefdeadbeefdeadbeef"

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sdb := sqlx.NewDb(db, "sqlmock")
	s := &Server{db: sdb, store: NewStore(sdb)}
	s.setupEcho()
	return s, mock
}

// expectAuth queues the session lookup the auth middleware performs.
func expectAuth(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, expires_at FROM sessions WHERE token = $1`)).
		WithArgs(testToken).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow(testUserID, time.Now().Add(time.Hour)))
}

func doRequest(s *Server, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestIdeasRequireToken(t *testing.T) {
	s, mock := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/ideas", "", false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpiredSessionRejected(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, expires_at FROM sessions WHERE token = $1`)).
		WithArgs(testToken).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow(testUserID, time.Now().Add(-time.Minute)))

	rec := doRequest(s, http.MethodGet, "/api/v1/ideas", "", true)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "token expired")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListIdeasHandler(t *testing.T) {
	s, mock := newTestServer(t)

	expectAuth(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 AND archived = FALSE`)).
		WithArgs(testUserID).
		WillReturnRows(ideaRows(model.Idea{ID: 1, Title: "fermentation fridge"}))

	rec := doRequest(s, http.MethodGet, "/api/v1/ideas", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Ideas []model.Idea `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Ideas, 1)
	require.Equal(t, "fermentation fridge", resp.Ideas[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIdeaHandlerNotFound(t *testing.T) {
	s, mock := newTestServer(t)

	expectAuth(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 AND id = $2`)).
		WithArgs(testUserID, int64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := doRequest(s, http.MethodGet, "/api/v1/ideas/99", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIdeaHandlerRejectsEmptyTitle(t *testing.T) {
	s, mock := newTestServer(t)

	expectAuth(mock)

	rec := doRequest(s, http.MethodPost, "/api/v1/ideas", `{"title":"   "}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveIdeaHandler(t *testing.T) {
	s, mock := newTestServer(t)

	expectAuth(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE ideas SET archived = $3`)).
		WithArgs(testUserID, int64(3), true).
		WillReturnRows(ideaRows(model.Idea{ID: 3, Title: "shelved", Archived: true}))

	rec := doRequest(s, http.MethodPost, "/api/v1/ideas/3/archive", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var idea model.Idea
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idea))
	require.True(t, idea.Archived)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBrainstormUnconfigured(t *testing.T) {
	s, mock := newTestServer(t)

	expectAuth(mock)

	rec := doRequest(s, http.MethodPost, "/api/v1/brainstorm", `{"idea_id":1}`, true)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBrainstormHandler(t *testing.T) {
	s, mock := newTestServer(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, _ := json.Marshal(brainstorm.Result{
			Summary:   "worth a weekend",
			Angles:    []string{"start with a prototype"},
			Questions: []string{"who is it for?"},
			NextSteps: []string{"sketch the flow"},
		})
		resp := map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": string(content)}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer upstream.Close()

	s.ai = brainstorm.New("test-key", "mistral-small-latest").WithBaseURL(upstream.URL)

	expectAuth(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 AND id = $2`)).
		WithArgs(testUserID, int64(4)).
		WillReturnRows(ideaRows(model.Idea{ID: 4, Title: "kite cam", Content: "strap a camera to a kite"}))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE ideas SET last_brainstorm = $3`)).
		WithArgs(testUserID, int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(s, http.MethodPost, "/api/v1/brainstorm", `{"idea_id":4}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var result brainstorm.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "worth a weekend", result.Summary)
	require.NotEmpty(t, result.NextSteps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	s, mock := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/register", `{"email":"a@b.c","password":"short"}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginSuccess(t *testing.T) {
	s, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users WHERE email = $1`)).
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).
			AddRow(testUserID, string(hash)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WithArgs(testUserID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doRequest(s, http.MethodPost, "/api/v1/login", `{"email":"a@b.c","password":"hunter2hunter2"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Token, 64)
	require.Equal(t, testUserID, resp.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	s, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users WHERE email = $1`)).
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).
			AddRow(testUserID, string(hash)))

	rec := doRequest(s, http.MethodPost, "/api/v1/login", `{"email":"a@b.c","password":"wrongpassword"}`, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
