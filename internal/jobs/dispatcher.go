// Package jobs defines background tasks such as forwarding webhook events to
// the agent platform.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/hook-relay/internal/core"
)

// queueSize bounds how many accepted events may wait for a free worker.
const queueSize = 100

// dispatcher implements core.JobDispatcher and manages a pool of worker
// goroutines that forward pull request events to the agent platform.
type dispatcher struct {
	invokeJob  core.Job                    // Job implementation executed by each worker.
	jobQueue   chan *core.PullRequestEvent // Queue of accepted events.
	maxWorkers int                         // Number of concurrent workers.
	wg         sync.WaitGroup              // Tracks active workers for graceful shutdown.
	logger     *slog.Logger                // Logger instance for the dispatcher.
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(invokeJob core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		invokeJob:  invokeJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.PullRequestEvent, queueSize),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting dispatch worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down dispatch worker", "id", workerID)
}

// processEvent runs the invoke job for one event. Job failures are terminal
// here: they are logged and never propagated, because the HTTP response for
// the originating delivery was sent long ago.
func (d *dispatcher) processEvent(workerID int, event *core.PullRequestEvent) {
	d.logger.Info("worker processing event",
		"worker_id", workerID,
		"pr", event.PRInfo(),
	)

	err := d.invokeJob.Run(context.Background(), event)
	if err != nil {
		d.logger.Error("agent dispatch failed",
			"pr", event.PRInfo(),
			"error", err,
		)
	}
}

// Dispatch queues a pull request event for processing by a worker. It never
// blocks; when the queue is full the event is rejected and the caller decides
// what to do with the error.
func (d *dispatcher) Dispatch(_ context.Context, event *core.PullRequestEvent) error {
	d.logger.Info("queuing agent dispatch", "pr", event.PRInfo())

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept event for %s", event.PRInfo())
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all dispatch jobs have finished")
}
