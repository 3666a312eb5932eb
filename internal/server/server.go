// Package server exposes the changelog timeline, commit history and
// namespace diff engine over HTTP for the dashboard.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitscribe/internal/changelog"
	"gitscribe/internal/gitrepo"
	"gitscribe/internal/namespace"
)

// gitAPI is the slice of repository operations the handlers need.
type gitAPI interface {
	Log(ctx context.Context, limit int) ([]gitrepo.Commit, error)
	DiffOf(ctx context.Context, hash string) (string, error)
	Status(ctx context.Context) (string, error)
	CheckoutCommit(ctx context.Context, hash, branch string) (string, error)
}

// diffEngine computes namespace snapshots and diffs.
type diffEngine interface {
	Diff(ctx context.Context, refA, refB string, opts namespace.Options) (*namespace.Result, error)
	Snapshot(ctx context.Context, ref string, opts namespace.Options) (*namespace.Set, error)
}

// history reads the changelog.
type history interface {
	Load() ([]changelog.Detail, error)
	Get(id string) (*changelog.Detail, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	git        gitAPI
	engine     diffEngine
	changes    history
	httpServer *http.Server
	logger     *slog.Logger
	port       int
}

// Config holds server configuration.
type Config struct {
	Port         int
	Repo         *gitrepo.Repo
	Engine       *namespace.Engine
	ChangelogDir string
	Logger       *slog.Logger
}

// New creates a server instance and wires its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		git:     cfg.Repo,
		engine:  cfg.Engine,
		changes: changelog.NewReader(cfg.ChangelogDir),
		logger:  logger,
		port:    cfg.Port,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/changes", s.handleChanges)
	mux.HandleFunc("GET /api/changes/{id}", s.handleChangeByID)
	mux.HandleFunc("GET /api/commits", s.handleCommits)
	mux.HandleFunc("GET /api/commits/{hash}", s.handleCommitByHash)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/checkout", s.handleCheckout)
	mux.HandleFunc("GET /api/namespaces", s.handleNamespaces)
	mux.HandleFunc("GET /api/namespaces/diff", s.handleNamespaceDiff)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", fmt.Sprintf("http://localhost:%d", s.port))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	s.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
