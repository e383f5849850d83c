package agent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/hook-relay/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(serverURL string) Client {
	cfg := &config.Config{
		AgentAPIURL: serverURL,
		AgentAPIKey: "test-key",
		AgentID:     "agent-1",
	}
	return NewClient(cfg, &http.Client{}, testLogger())
}

func TestWaitRunRequestShape(t *testing.T) {
	var gotPath, gotAPIKey, gotScheme string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotScheme = r.Header.Get("X-Auth-Scheme")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	input := RunInput{
		Messages: []Message{{Role: "human", Content: `{"action":"opened"}`}},
	}

	result, err := client.WaitRun(context.Background(), input)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success"}`, string(result))

	assert.Equal(t, "/runs/wait", gotPath)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "langsmith-api-key", gotScheme)

	var gotRequest struct {
		AssistantID string   `json:"assistant_id"`
		Input       RunInput `json:"input"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &gotRequest))
	assert.Equal(t, "agent-1", gotRequest.AssistantID)
	require.Len(t, gotRequest.Input.Messages, 1)
	assert.Equal(t, "human", gotRequest.Input.Messages[0].Role)
	assert.Equal(t, `{"action":"opened"}`, gotRequest.Input.Messages[0].Content)
}

func TestWaitRunTrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL + "/")
	_, err := client.WaitRun(context.Background(), RunInput{})
	require.NoError(t, err)
	assert.Equal(t, "/runs/wait", gotPath)
}

func TestWaitRunNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "agent exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.WaitRun(context.Background(), RunInput{})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "agent exploded")
}

func TestWaitRunConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(srv.URL)
	_, err := client.WaitRun(context.Background(), RunInput{})
	require.Error(t, err)
}
