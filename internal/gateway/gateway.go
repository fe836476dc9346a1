// ABOUTME: Gateway orchestrator that wires the store, registry, and runtime
// ABOUTME: Manages the HTTP server lifecycle with graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/trainer-gateway/internal/agent"
	"github.com/2389/trainer-gateway/internal/approval"
	"github.com/2389/trainer-gateway/internal/auth"
	"github.com/2389/trainer-gateway/internal/capability"
	"github.com/2389/trainer-gateway/internal/config"
	"github.com/2389/trainer-gateway/internal/model"
	"github.com/2389/trainer-gateway/internal/store"
	"github.com/2389/trainer-gateway/internal/tools"
	"github.com/2389/trainer-gateway/internal/weights"
)

// Gateway orchestrates the trainer-gateway server components: the store,
// the capability registry, the tool executor, the approval workflow, the
// agent runtime, and the HTTP API that fronts them.
type Gateway struct {
	config     *config.Config
	store      store.Store
	registry   *capability.Registry
	executor   *tools.Executor
	workflow   *approval.Workflow
	runtime    *agent.Runtime
	verifier   *auth.JWTVerifier
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Gateway from configuration, opening the store and
// registering the built-in capabilities.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	registry := capability.NewRegistry(s, logger.With("component", "registry"))
	executor := tools.NewExecutor(registry, s, cfg.Agent.AuditMode, logger.With("component", "executor"))
	workflow := approval.NewWorkflow(s, executor, logger.With("component", "approval"))

	client := model.NewOpenAIClient(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Model,
		logger.With("component", "model"))
	runtime := agent.NewRuntime(client, executor, registry, logger.With("component", "agent"))

	g := &Gateway{
		config:   cfg,
		store:    s,
		registry: registry,
		executor: executor,
		workflow: workflow,
		runtime:  runtime,
		verifier: auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)),
		logger:   logger,
	}

	if err := g.registerCapabilities(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g, nil
}

// registerCapabilities registers every built-in capability and its tool
// handler. A registration failure is fatal; the gateway must not serve a
// partial tool set.
func (g *Gateway) registerCapabilities(ctx context.Context) error {
	weightsHandler := weights.NewHandler(g.store, g.logger.With("component", "weights"))
	g.executor.RegisterHandler(weights.ToolPrefix, weightsHandler)

	if err := g.registry.Register(ctx, weights.Capability()); err != nil {
		return fmt.Errorf("registering weights capability: %w", err)
	}
	return nil
}

// Run starts the HTTP server and blocks until the context is canceled,
// then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("http server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	g.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		g.logger.Error("http shutdown failed", "error", err)
	}
	if err := g.store.Close(); err != nil {
		g.logger.Error("store close failed", "error", err)
	}
	return nil
}

// routes builds the HTTP mux: public auth and health endpoints, and the
// JWT-protected API surface.
func (g *Gateway) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("POST /api/auth/register", g.handleRegister)
	mux.HandleFunc("POST /api/auth/login", g.handleLogin)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/auth/me", g.handleMe)
	protected.HandleFunc("POST /api/agent/chat", g.handleChat)
	protected.HandleFunc("POST /api/agent/action", g.handleAction)
	protected.HandleFunc("GET /api/approvals/pending", g.handleListPendingApprovals)
	protected.HandleFunc("POST /api/approvals/{id}/approve", g.handleApprove)
	protected.HandleFunc("POST /api/approvals/{id}/deny", g.handleDeny)
	protected.HandleFunc("GET /api/weights", g.handleListWeights)
	protected.HandleFunc("GET /api/capabilities", g.handleListCapabilities)
	protected.HandleFunc("GET /api/capabilities/{id}/docs", g.handleCapabilityDocs)

	requireAuth := auth.RequireAuth(g.store, g.verifier)
	mux.Handle("/api/", requireAuth(protected))

	return mux
}
