// Package sync holds the remote API client and the offline replay loop that
// reconciles the local cache with the server.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/embercove/ideavault/internal/brainstorm"
	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/model"
)

// ErrUnavailable marks a failure worth retrying: the server was unreachable or
// answered 5xx. Queued actions that hit it stay queued.
var ErrUnavailable = errors.New("server unavailable")

const defaultServerURL = "http://localhost:8080"

// APIError is a rejection the server meant: validation failures, missing
// ideas, bad credentials. Replaying these again would fail the same way.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
}

// Config holds the client's session state
type Config struct {
	ServerURL  string `json:"server_url"`
	Token      string `json:"token"`
	UserID     string `json:"user_id"`
	LastSyncAt int64  `json:"last_sync_at"` // Unix seconds of last successful sync
}

// Client is the remote API client
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
}

// NewClient creates a client with session state at ~/.ideavault/session.json
func NewClient() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewClientAt(filepath.Join(home, ".ideavault", "session.json")), nil
}

// NewClientAt creates a client with session state at the given path.
func NewClientAt(configPath string) *Client {
	c := &Client{
		configPath: configPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.loadConfig()
	return c
}

func (c *Client) loadConfig() {
	c.config = &Config{ServerURL: defaultServerURL}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		logger.Warn("Ignoring unreadable session file",
			logger.F("path", c.configPath), logger.F("error", err))
		return
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	c.config = cfg
}

func (c *Client) saveConfig() error {
	dir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the server URL
func (c *Client) SetServer(url string) error {
	c.config.ServerURL = url
	return c.saveConfig()
}

// IsLoggedIn returns true if the client has a session token
func (c *Client) IsLoggedIn() bool {
	return c.config.Token != ""
}

// Status returns server URL, user ID and last sync time
func (c *Client) Status() (string, string, time.Time) {
	return c.config.ServerURL, c.config.UserID, time.Unix(c.config.LastSyncAt, 0)
}

// ShouldAutoSync reports whether the last successful sync is stale (12h).
func (c *Client) ShouldAutoSync() bool {
	return time.Since(time.Unix(c.config.LastSyncAt, 0)) > 12*time.Hour
}

// UpdateSyncTime records a successful sync
func (c *Client) UpdateSyncTime() error {
	c.config.LastSyncAt = time.Now().Unix()
	return c.saveConfig()
}

// Register creates a new account and stores the session
func (c *Client) Register(email, password string) error {
	return c.authenticate("/api/v1/register", email, password)
}

// Login authenticates with email and password
func (c *Client) Login(email, password string) error {
	return c.authenticate("/api/v1/login", email, password)
}

func (c *Client) authenticate(path, email, password string) error {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := c.httpClient.Post(
		c.config.ServerURL+path,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("authentication failed: %s", string(respBody))
	}

	var result struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	return c.saveConfig()
}

// Logout clears the session
func (c *Client) Logout() error {
	c.config.Token = ""
	c.config.UserID = ""
	c.config.LastSyncAt = 0
	return c.saveConfig()
}

// Ping checks connectivity without authentication
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.ServerURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// do sends an authenticated request and classifies the failure: transport
// errors and 5xx become ErrUnavailable, 4xx becomes *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(respBody, &apiErr)
		if apiErr.Error == "" {
			apiErr.Error = string(respBody)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListIdeas fetches ideas from the server. Archived ideas are excluded unless
// includeArchived is set.
func (c *Client) ListIdeas(ctx context.Context, includeArchived bool) ([]model.Idea, error) {
	path := "/api/v1/ideas"
	if includeArchived {
		path += "?archived=1"
	}

	var result struct {
		Ideas []model.Idea `json:"ideas"`
	}
	if err := c.do(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Ideas, nil
}

// GetIdea fetches a single idea
func (c *Client) GetIdea(ctx context.Context, id int64) (model.Idea, error) {
	var idea model.Idea
	err := c.do(ctx, "GET", "/api/v1/ideas/"+strconv.FormatInt(id, 10), nil, &idea)
	return idea, err
}

// CreateIdea creates an idea on the server and returns it with the assigned ID
func (c *Client) CreateIdea(ctx context.Context, idea model.Idea) (model.Idea, error) {
	var created model.Idea
	err := c.do(ctx, "POST", "/api/v1/ideas", idea, &created)
	return created, err
}

// UpdateIdea updates title, content, tags and urls
func (c *Client) UpdateIdea(ctx context.Context, idea model.Idea) (model.Idea, error) {
	var updated model.Idea
	err := c.do(ctx, "PUT", "/api/v1/ideas/"+strconv.FormatInt(idea.ID, 10), idea, &updated)
	return updated, err
}

// SetArchived flips the soft-delete flag on the server
func (c *Client) SetArchived(ctx context.Context, id int64, archived bool) (model.Idea, error) {
	action := "archive"
	if !archived {
		action = "unarchive"
	}

	var updated model.Idea
	err := c.do(ctx, "POST", fmt.Sprintf("/api/v1/ideas/%d/%s", id, action), nil, &updated)
	return updated, err
}

// DeleteIdea permanently removes an idea. Not used by the TUI; archive is the
// primary flow.
func (c *Client) DeleteIdea(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", "/api/v1/ideas/"+strconv.FormatInt(id, 10), nil, nil)
}

// Brainstorm asks the server to run the AI brainstorm for an idea
func (c *Client) Brainstorm(ctx context.Context, id int64) (*brainstorm.Result, error) {
	var result brainstorm.Result
	err := c.do(ctx, "POST", "/api/v1/brainstorm", map[string]int64{"idea_id": id}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
