// Package brainstorm calls the Mistral chat-completions API to expand a
// captured idea into angles, open questions, and next steps.
package brainstorm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/embercove/ideavault/internal/model"
)

const defaultBaseURL = "https://api.mistral.ai"

// Result is the structured output persisted on the idea.
type Result struct {
	Summary   string   `json:"summary"`
	Angles    []string `json:"angles"`
	Questions []string `json:"questions"`
	NextSteps []string `json:"next_steps"`
}

// Client talks to the Mistral API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a brainstorm client.
func New(apiKey, modelName string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      modelName,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Tests use this.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

const prompt = `
You are a brainstorming partner for a personal idea notebook.

Given an idea (title, optional notes, optional tags), respond with EXACTLY these
4 fields: summary, angles, questions, next_steps.

### summary
One or two sentences restating the idea in its strongest form.

### angles
3-5 distinct directions the idea could be taken. Each entry is one sentence.
Prefer angles the author has probably not considered; avoid restating the notes.

### questions
3-5 open questions the author should answer before investing time.
Focus on audience, feasibility, and what already exists.

### next_steps
2-4 small, concrete actions that could be done within a week.

Be specific to THIS idea. No generic startup advice, no brand names, no filler.
`

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Run sends the idea to the model and decodes the structured result.
func (c *Client) Run(ctx context.Context, idea model.Idea) (*Result, error) {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nIdea title: ")
	sb.WriteString(idea.Title)
	if idea.Content != "" {
		sb.WriteString("\n\nNotes:\n")
		sb.WriteString(idea.Content)
	}
	if len(idea.Tags) > 0 {
		sb.WriteString("\n\nTags: ")
		sb.WriteString(strings.Join(idea.Tags, ", "))
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: sb.String()},
		},
		ResponseFormat: &responseFormat{
			Type: "json_object",
			JSONSchema: jsonSchema{
				Name: "idea_brainstorm",
				Schema: map[string]any{
					"type":     "object",
					"required": []string{"summary", "angles", "questions", "next_steps"},
					"properties": map[string]any{
						"summary": map[string]any{
							"type": "string",
						},
						"angles": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"questions": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"next_steps": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
				},
				Strict: true,
			},
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx,
		"POST",
		c.baseURL+"/v1/chat/completions",
		bytes.NewBuffer(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Mistral API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		errBody.ReadFrom(resp.Body)
		return nil, fmt.Errorf("Mistral API error (status %d): %s", resp.StatusCode, errBody.String())
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	var result Result
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brainstorm: %w", err)
	}

	return &result, nil
}
