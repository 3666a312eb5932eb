package namespace

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
)

// Reader supplies file content at a resolved snapshot handle. A path
// that does not exist at the handle must yield an error matching
// fs.ErrNotExist; anything else is treated as a read failure. Reads
// never mutate repository state.
type Reader interface {
	ReadFile(ctx context.Context, handle, path string) ([]byte, error)
	ListFiles(ctx context.Context, handle string) ([]string, error)
}

// SymbolCache is an optional content cache keyed by (handle, path).
// It is a pure optimization: the builder behaves identically without
// one, and only immutable handles (commit hashes) are ever cached.
type SymbolCache interface {
	Get(ctx context.Context, handle, path string) ([]Symbol, bool, error)
	Put(ctx context.Context, handle, path string, symbols []Symbol) error
}

// Builder walks a set of paths at one snapshot handle and aggregates
// the extracted symbols into a Set.
type Builder struct {
	reader   Reader
	registry *Registry
	cache    SymbolCache
	logger   *slog.Logger
}

// NewBuilder returns a builder over the given reader. A nil registry
// selects the built-in extractors.
func NewBuilder(reader Reader, registry *Registry, cache SymbolCache, logger *slog.Logger) *Builder {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{reader: reader, registry: registry, cache: cache, logger: logger}
}

// Build constructs the symbol set for one handle. Paths missing at the
// handle contribute nothing and are skipped silently. A genuine read
// failure is logged, recorded on the set, and does not abort the build:
// one unreadable file must not block symbols from every other file.
func (b *Builder) Build(ctx context.Context, handle string, paths []string) (*Set, error) {
	set := newSet(handle)
	cacheable := b.cache != nil && isCommitHash(handle)

	for _, path := range paths {
		ex := b.registry.For(path)
		if ex == nil {
			continue
		}

		if cacheable {
			if symbols, ok, err := b.cache.Get(ctx, handle, path); err == nil && ok {
				for _, sym := range symbols {
					set.add(sym)
				}
				continue
			}
		}

		content, err := b.reader.ReadFile(ctx, handle, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			b.logger.Warn("skipping unreadable file", "ref", handle, "path", path, "error", err)
			set.Skipped = append(set.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			continue
		}

		symbols := ex.Extract(path, content)
		for _, sym := range symbols {
			set.add(sym)
		}
		if cacheable {
			if err := b.cache.Put(ctx, handle, path, symbols); err != nil {
				b.logger.Warn("symbol cache write failed", "path", path, "error", err)
			}
		}
	}
	return set, nil
}

// isCommitHash reports whether a handle is a full object hash, the only
// kind of handle whose content is immutable.
func isCommitHash(handle string) bool {
	if len(handle) != 40 && len(handle) != 64 {
		return false
	}
	for _, r := range handle {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
