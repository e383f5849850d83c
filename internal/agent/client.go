// Package agent provides a client for the downstream agent execution
// platform. The relay only needs one operation from it: a stateless
// ("threadless") run that blocks until the agent has processed the input.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sevigo/hook-relay/internal/config"
)

// maxResponseBytes bounds how much of an agent response is read into memory.
const maxResponseBytes = 1 << 20

// Message is one entry in a conversation-style run input.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RunInput is the input object submitted with a run.
type RunInput struct {
	Messages []Message `json:"messages"`
}

// runRequest is the wire format of a threadless wait run.
type runRequest struct {
	AssistantID string   `json:"assistant_id"`
	Input       RunInput `json:"input"`
}

// Client defines the one operation the relay needs from the agent platform.
//
// WaitRun submits input as a stateless run for the configured agent and
// blocks until the platform reports a result or the call fails. The raw
// result document is returned for observability.
type Client interface {
	WaitRun(ctx context.Context, input RunInput) (json.RawMessage, error)
}

type runsClient struct {
	baseURL     string
	apiKey      string
	assistantID string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a runs API client from the application configuration.
// The caller supplies the HTTP client so transport timeouts stay under the
// application's control.
func NewClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) Client {
	return &runsClient{
		baseURL:     strings.TrimRight(cfg.AgentAPIURL, "/"),
		apiKey:      cfg.AgentAPIKey,
		assistantID: cfg.AgentID,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// WaitRun implements Client against the platform's POST /runs/wait endpoint.
func (c *runsClient) WaitRun(ctx context.Context, input RunInput) (json.RawMessage, error) {
	body, err := json.Marshal(runRequest{AssistantID: c.assistantID, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to encode run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/runs/wait", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Auth-Scheme", "langsmith-api-key")

	c.logger.Debug("submitting threadless run", "assistant_id", c.assistantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("run request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read run response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("run request returned status %d: %s", resp.StatusCode, truncate(respBody, 512))
	}

	return respBody, nil
}

// truncate trims b for inclusion in an error message.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
