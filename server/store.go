package server

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/embercove/ideavault/internal/model"
)

// ErrIdeaNotFound is returned when an idea does not exist or belongs to
// another user.
var ErrIdeaNotFound = errors.New("idea not found")

// StringList maps an ordered []string onto a JSONB column.
type StringList []string

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(s))
	return string(raw), err
}

// Scan implements sql.Scanner
func (s *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

type ideaRow struct {
	ID             int64          `db:"id"`
	UserID         string         `db:"user_id"`
	ClientID       string         `db:"client_id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	Tags           StringList     `db:"tags"`
	URLs           StringList     `db:"urls"`
	Archived       bool           `db:"archived"`
	LastBrainstorm sql.NullString `db:"last_brainstorm"`
	CreatedAt      sql.NullTime   `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

func (r ideaRow) toModel() model.Idea {
	idea := model.Idea{
		ID:       r.ID,
		ClientID: r.ClientID,
		Title:    r.Title,
		Content:  r.Content,
		Tags:     r.Tags,
		URLs:     r.URLs,
		Archived: r.Archived,
	}
	if r.LastBrainstorm.Valid {
		idea.LastBrainstorm = json.RawMessage(r.LastBrainstorm.String)
	}
	if r.CreatedAt.Valid {
		idea.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		idea.UpdatedAt = r.UpdatedAt.Time
	}
	return idea
}

// Store is the Postgres persistence layer for ideas.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a store over an open connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const ideaColumns = `id, user_id, client_id, title, content, tags, urls, archived, last_brainstorm, created_at, updated_at`

// ListIdeas returns a user's ideas, newest first. Archived ideas are excluded
// unless includeArchived is set; they are never physically deleted here.
func (s *Store) ListIdeas(ctx context.Context, userID string, includeArchived bool) ([]model.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var rows []ideaRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	ideas := make([]model.Idea, 0, len(rows))
	for _, r := range rows {
		ideas = append(ideas, r.toModel())
	}
	return ideas, nil
}

// GetIdea loads a single idea owned by the user
func (s *Store) GetIdea(ctx context.Context, userID string, id int64) (model.Idea, error) {
	var row ideaRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+ideaColumns+` FROM ideas WHERE user_id = $1 AND id = $2`,
		userID, id)
	if err == sql.ErrNoRows {
		return model.Idea{}, ErrIdeaNotFound
	}
	if err != nil {
		return model.Idea{}, fmt.Errorf("failed to get idea: %w", err)
	}
	return row.toModel(), nil
}

// CreateIdea inserts an idea and returns it with the assigned ID. The
// (user_id, client_id) conflict path makes offline replays idempotent: a
// create that already landed just returns the existing row.
func (s *Store) CreateIdea(ctx context.Context, userID string, idea model.Idea) (model.Idea, error) {
	clientID := idea.ClientID
	if clientID == "" {
		clientID = uuid.New().String()
	}

	var row ideaRow
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO ideas (user_id, client_id, title, content, tags, urls, archived)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		ON CONFLICT (user_id, client_id) DO UPDATE SET updated_at = NOW()
		RETURNING `+ideaColumns,
		userID, clientID, idea.Title, idea.Content,
		StringList(idea.Tags), StringList(idea.URLs))
	if err != nil {
		return model.Idea{}, fmt.Errorf("failed to create idea: %w", err)
	}
	return row.toModel(), nil
}

// UpdateIdea rewrites title, content, tags and urls
func (s *Store) UpdateIdea(ctx context.Context, userID string, idea model.Idea) (model.Idea, error) {
	var row ideaRow
	err := s.db.GetContext(ctx, &row, `
		UPDATE ideas
		SET title = $3, content = $4, tags = $5, urls = $6, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING `+ideaColumns,
		userID, idea.ID, idea.Title, idea.Content,
		StringList(idea.Tags), StringList(idea.URLs))
	if err == sql.ErrNoRows {
		return model.Idea{}, ErrIdeaNotFound
	}
	if err != nil {
		return model.Idea{}, fmt.Errorf("failed to update idea: %w", err)
	}
	return row.toModel(), nil
}

// SetArchived flips the soft-delete flag
func (s *Store) SetArchived(ctx context.Context, userID string, id int64, archived bool) (model.Idea, error) {
	var row ideaRow
	err := s.db.GetContext(ctx, &row, `
		UPDATE ideas SET archived = $3, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING `+ideaColumns,
		userID, id, archived)
	if err == sql.ErrNoRows {
		return model.Idea{}, ErrIdeaNotFound
	}
	if err != nil {
		return model.Idea{}, fmt.Errorf("failed to archive idea: %w", err)
	}
	return row.toModel(), nil
}

// DeleteIdea permanently removes an idea. The primary flow never calls this;
// archive is the soft-delete surface.
func (s *Store) DeleteIdea(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ideas WHERE user_id = $1 AND id = $2`,
		userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIdeaNotFound
	}
	return nil
}

// SaveBrainstorm persists the latest AI brainstorm on the idea's row
func (s *Store) SaveBrainstorm(ctx context.Context, userID string, id int64, result json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ideas SET last_brainstorm = $3, updated_at = NOW() WHERE user_id = $1 AND id = $2`,
		userID, id, string(result))
	if err != nil {
		return fmt.Errorf("failed to save brainstorm: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIdeaNotFound
	}
	return nil
}
