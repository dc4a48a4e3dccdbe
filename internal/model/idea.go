package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Idea is a captured note. The server assigns the numeric ID; ideas created
// while offline carry only a client-generated ClientID until first sync.
type Idea struct {
	ID             int64           `json:"id"`
	ClientID       string          `json:"client_id,omitempty"`
	Title          string          `json:"title"`
	Content        string          `json:"content,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	URLs           []string        `json:"urls,omitempty"`
	Archived       bool            `json:"archived"`
	LastBrainstorm json.RawMessage `json:"last_brainstorm,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewIdea creates an idea with defaults. The title is trimmed here so
// validation sees what will actually be stored.
func NewIdea(clientID, title, content string) Idea {
	now := time.Now()
	return Idea{
		ClientID:  clientID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		Tags:      []string{},
		URLs:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the invariants the server also enforces.
func (i *Idea) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// Key returns the identifier the local cache uses for this idea: the server ID
// when assigned, otherwise the client ID.
func (i *Idea) Key() string {
	if i.ID > 0 {
		return fmt.Sprintf("%d", i.ID)
	}
	return i.ClientID
}

// ParseTags splits a comma-separated input into a clean ordered tag list.
// Order is preserved; empty segments are dropped.
func ParseTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
