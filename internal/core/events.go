// Package core defines the essential interfaces and data structures that form
// the backbone of the application. These components are designed to be
// abstract, allowing for flexible and decoupled implementations of the
// application's logic.
package core

import (
	"fmt"
	"strconv"
)

// unknownField is the sentinel for display fields absent from a payload.
const unknownField = "unknown"

// PullRequestEvent represents a matched "pull_request opened" webhook
// delivery. Payload carries the full original body as decoded JSON; the
// remaining fields are derived from it for observability only and default to
// "unknown" when the payload does not provide them.
type PullRequestEvent struct {
	Payload      map[string]any
	Number       string
	RepoFullName string
	Title        string
}

// PRInfo returns the human-readable identifier used to trace this event
// through logs.
func (e *PullRequestEvent) PRInfo() string {
	return fmt.Sprintf("PR #%s in %s", e.Number, e.RepoFullName)
}

// EventFromWebhook filters a webhook delivery down to the one event kind the
// relay forwards. It acts as an anti-corruption layer: the decision depends
// only on the event type header and the payload's "action" field, and the
// returned error names the reason a delivery was ignored. No other payload
// shape is required; missing display fields never cause a failure.
func EventFromWebhook(eventType string, payload map[string]any) (*PullRequestEvent, error) {
	if eventType != "pull_request" {
		return nil, fmt.Errorf("event type is %q, not pull_request", eventType)
	}

	action, _ := payload["action"].(string)
	if action != "opened" {
		return nil, fmt.Errorf("pull_request action is %q, not opened", action)
	}

	return &PullRequestEvent{
		Payload:      payload,
		Number:       numberField(payload, "number"),
		RepoFullName: stringField(payload, "repository", "full_name"),
		Title:        stringField(payload, "pull_request", "title"),
	}, nil
}

// stringField walks nested JSON objects along keys and returns the string
// leaf, or "unknown" when any step is absent or not the expected type.
func stringField(payload map[string]any, keys ...string) string {
	current := any(payload)
	for _, key := range keys {
		obj, ok := current.(map[string]any)
		if !ok {
			return unknownField
		}
		current = obj[key]
	}

	s, ok := current.(string)
	if !ok || s == "" {
		return unknownField
	}
	return s
}

// numberField renders a top-level JSON number as an integer string, or
// "unknown" when absent. encoding/json decodes numbers into float64.
func numberField(payload map[string]any, key string) string {
	n, ok := payload[key].(float64)
	if !ok {
		return unknownField
	}
	return strconv.FormatInt(int64(n), 10)
}
