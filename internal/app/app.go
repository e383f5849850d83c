// Package app initializes and orchestrates the main components of the webhook
// relay. It wires together the configuration, agent client, dispatcher, and
// server.
package app

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/hook-relay/internal/agent"
	"github.com/sevigo/hook-relay/internal/config"
	"github.com/sevigo/hook-relay/internal/core"
	"github.com/sevigo/hook-relay/internal/jobs"
	"github.com/sevigo/hook-relay/internal/server"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
}

// newAgentHTTPClient creates the HTTP client used for agent runs. A waiting
// run holds its connection until the agent finishes, so the overall timeout
// comes from configuration rather than transport defaults.
func newAgentHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) *App {
	logger.Info("initializing webhook relay",
		"agent_id", cfg.AgentID,
		"agent_api_url", cfg.AgentAPIURL,
		"max_workers", cfg.MaxWorkers)

	agentClient := agent.NewClient(cfg, newAgentHTTPClient(cfg.AgentTimeout), logger)
	invokeJob := jobs.NewInvokeJob(agentClient, logger)
	dispatcher := jobs.NewDispatcher(invokeJob, cfg.MaxWorkers, logger)
	httpServer := server.NewServer(ctx, cfg, dispatcher, logger)

	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     httpServer,
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (a *App) Start() error {
	a.logger.Info("webhook relay started")
	a.logger.Info("listening", "port", a.cfg.ServerPort)
	a.logger.Info("endpoints registered", "webhook", "POST /webhook", "health", "GET /health")

	err := a.server.Start()
	if err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("webhook relay shutting down")

	// Stop the HTTP server first to prevent new incoming deliveries.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the dispatcher, allowing in-flight agent calls to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("webhook relay stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("webhook relay stopped successfully")
	return nil
}
