package brainstorm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embercove/ideavault/internal/model"
)

func TestRunDecodesStructuredResponse(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		content, _ := json.Marshal(Result{
			Summary:   "A plant watering reminder keyed to local weather.",
			Angles:    []string{"sensor-free version using forecasts"},
			Questions: []string{"who pays for weather data?"},
			NextSteps: []string{"sketch the reminder schedule"},
		})
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Index   int         `json:"index"`
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: string(content)}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	c := New("test-key", "mistral-small-latest").WithBaseURL(ts.URL)

	idea := model.NewIdea("c1", "weather-aware plant reminders", "push alert when it rained")
	idea.Tags = []string{"iot", "plants"}

	result, err := c.Run(context.Background(), idea)
	require.NoError(t, err)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "mistral-small-latest", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	require.True(t, strings.Contains(gotBody.Messages[0].Content, "weather-aware plant reminders"))
	require.True(t, strings.Contains(gotBody.Messages[0].Content, "iot, plants"))
	require.Equal(t, "A plant watering reminder keyed to local weather.", result.Summary)
	require.Len(t, result.Angles, 1)
}

func TestRunSurfacesUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New("bad-key", "mistral-small-latest").WithBaseURL(ts.URL)
	_, err := c.Run(context.Background(), model.NewIdea("c1", "x", ""))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}
