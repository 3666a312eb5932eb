package namespace

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Source is the read-only version-control capability the engine needs:
// resolving a user-supplied ref to a concrete snapshot handle, listing
// the tracked files at a handle, and reading one file at a handle.
type Source interface {
	Reader
	ResolveRef(ctx context.Context, ref string) (string, error)
}

// Engine computes namespace diffs between two refs. It is stateless
// across calls: each invocation re-reads both snapshots, and every
// symbol set is discarded once the diff is produced.
type Engine struct {
	source  Source
	builder *Builder
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	registry *Registry
	cache    SymbolCache
	logger   *slog.Logger
}

// WithRegistry replaces the built-in extractor registry.
func WithRegistry(r *Registry) EngineOption {
	return func(c *engineConfig) { c.registry = r }
}

// WithCache attaches a symbol cache consulted for immutable handles.
func WithCache(cache SymbolCache) EngineOption {
	return func(c *engineConfig) { c.cache = cache }
}

// WithLogger sets the logger for per-file warnings.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = logger }
}

// NewEngine returns an engine over the given source.
func NewEngine(source Source, opts ...EngineOption) *Engine {
	cfg := engineConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		source:  source,
		builder: NewBuilder(source, cfg.registry, cfg.cache, cfg.logger),
		logger:  cfg.logger,
	}
}

// Diff extracts symbols at both refs and classifies the difference.
// A ref that cannot be resolved aborts the request: nothing useful can
// be computed without both snapshots. Per-file read failures do not;
// they surface on the result as skipped files.
func (e *Engine) Diff(ctx context.Context, refA, refB string, opts Options) (*Result, error) {
	handleA, err := e.source.ResolveRef(ctx, refA)
	if err != nil {
		return nil, err
	}
	handleB, err := e.source.ResolveRef(ctx, refB)
	if err != nil {
		return nil, err
	}

	// Identical handles get a single build diffed against itself, which
	// guarantees the reflexivity invariant even under partial failures.
	if handleA == handleB {
		set, err := e.buildSide(ctx, handleA, opts)
		if err != nil {
			return nil, err
		}
		return Classify(set, set, opts), nil
	}

	// The two sides share no state, so build them concurrently and join
	// before classification.
	var setA, setB *Set
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		setA, err = e.buildSide(gctx, handleA, opts)
		return err
	})
	g.Go(func() error {
		var err error
		setB, err = e.buildSide(gctx, handleB, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Classify(setA, setB, opts), nil
}

// Snapshot builds the symbol set for a single ref, for callers that
// want to inspect one side without diffing.
func (e *Engine) Snapshot(ctx context.Context, ref string, opts Options) (*Set, error) {
	handle, err := e.source.ResolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.buildSide(ctx, handle, opts)
}

func (e *Engine) buildSide(ctx context.Context, handle string, opts Options) (*Set, error) {
	paths, err := e.source.ListFiles(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("list files at %s: %w", handle, err)
	}
	// Pre-filtering paths only avoids reads the classifier would
	// discard anyway; the classifier still applies the same filter.
	filtered := paths[:0]
	for _, p := range paths {
		if opts.wantFile(p) {
			filtered = append(filtered, p)
		}
	}
	return e.builder.Build(ctx, handle, filtered)
}
