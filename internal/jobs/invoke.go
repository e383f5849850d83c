package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/sevigo/hook-relay/internal/agent"
	"github.com/sevigo/hook-relay/internal/core"
)

// maxAttempts is the total number of agent invocation attempts per event.
const maxAttempts = 3

// InvokeJob forwards a pull request payload to the agent platform. Transient
// failures are retried with deterministic exponential backoff: 1s after the
// first failed attempt, 2s after the second, nothing after the third.
type InvokeJob struct {
	client agent.Client
	logger *slog.Logger

	// initialInterval is the delay before the first retry. Tests shorten it.
	initialInterval time.Duration
}

// NewInvokeJob creates the agent invocation job.
func NewInvokeJob(client agent.Client, logger *slog.Logger) *InvokeJob {
	if client == nil {
		panic("agent client cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &InvokeJob{client: client, logger: logger, initialInterval: time.Second}
}

// Run serializes the full original payload as one conversation message and
// drives the agent call through the retry policy. The returned error is the
// last attempt's failure once the policy is exhausted; the dispatcher logs it
// and moves on, so nothing escapes the background path.
func (j *InvokeJob) Run(ctx context.Context, event *core.PullRequestEvent) error {
	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	input := agent.RunInput{
		Messages: []agent.Message{{Role: "human", Content: string(payloadJSON)}},
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = j.initialInterval
	policy.Multiplier = 2
	policy.RandomizationFactor = 0 // fixed 1s/2s schedule, no jitter

	attempt := 0
	operation := func() (json.RawMessage, error) {
		attempt++
		if attempt == 1 {
			j.logger.Info("invoking agent", "pr", event.PRInfo())
		} else {
			j.logger.Info("retrying agent invocation",
				"pr", event.PRInfo(),
				"attempt", attempt,
				"max_attempts", maxAttempts,
			)
		}
		return j.client.WaitRun(ctx, input)
	}

	notify := func(err error, delay time.Duration) {
		j.logger.Warn("agent invocation failed, will retry",
			"pr", event.PRInfo(),
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		j.logger.Error("agent invocation failed after all attempts",
			"pr", event.PRInfo(),
			"attempts", attempt,
			"error", err,
		)
		return fmt.Errorf("agent invocation failed after %d attempts: %w", attempt, err)
	}

	j.logger.Info("agent invocation successful",
		"pr", event.PRInfo(),
		"response", string(result),
	)
	return nil
}
