// Package handler provides HTTP handlers for the relay.
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sevigo/hook-relay/internal/config"
	"github.com/sevigo/hook-relay/internal/core"
	"github.com/sevigo/hook-relay/internal/github"
)

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes one GitHub webhook delivery. The steps run strictly in
// order and the first applicable exit wins: authentication failure before
// parse failure, parse failure before classification. The response is fully
// determined before the dispatched job does any work.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if !github.VerifySignature(body, r.Header.Get("X-Hub-Signature-256"), h.cfg.GitHubWebhookSecret) {
		h.logger.Warn("invalid webhook signature received")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("invalid JSON payload", "error", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	event, err := core.EventFromWebhook(eventType, payload)
	if err != nil {
		h.logger.Info("ignoring webhook event", "type", eventType, "reason", err.Error())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	h.logger.Info("received pull_request opened", "pr", event.PRInfo(), "title", event.Title)

	if err := h.dispatcher.Dispatch(r.Context(), event); err != nil {
		// Delivery is best-effort. A full queue drops the event instead of
		// answering with an error status that would invite a redelivery the
		// relay cannot deduplicate.
		h.logger.Error("dropping event, failed to queue agent dispatch", "pr", event.PRInfo(), "error", err)
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Accepted")
}
