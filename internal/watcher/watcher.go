// Package watcher polls a repository for uncommitted changes and
// appends summarized records to the changelog.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitscribe/internal/changelog"
	"gitscribe/internal/gitrepo"
	"gitscribe/internal/summary"
)

// GitSource is the read-only slice of repository state the watcher
// observes each poll.
type GitSource interface {
	StatusLines(ctx context.Context) ([]string, error)
	Diff(ctx context.Context) (string, error)
	Branch(ctx context.Context) (string, error)
}

// Appender receives completed changelog entries.
type Appender interface {
	Append(e changelog.Entry) error
}

// Watcher runs the polling loop.
type Watcher struct {
	git        GitSource
	summarizer summary.Summarizer
	log        Appender
	interval   time.Duration
	logger     *slog.Logger
}

// New assembles a watcher. A zero interval defaults to 30 seconds.
func New(git GitSource, summarizer summary.Summarizer, log Appender, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		git:        git,
		summarizer: summarizer,
		log:        log,
		interval:   interval,
		logger:     logger,
	}
}

// Run polls until the context is canceled. Poll failures are logged and
// the loop continues; only cancellation stops it.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.poll(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// poll records one changelog entry if the working tree is dirty.
func (w *Watcher) poll(ctx context.Context) error {
	lines, err := w.git.StatusLines(ctx)
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	entry, err := w.buildEntry(ctx, lines)
	if err != nil {
		return err
	}
	if err := w.log.Append(entry); err != nil {
		return fmt.Errorf("append changelog: %w", err)
	}
	w.logger.Info("logged changes", "branch", entry.Branch, "files", len(entry.Files))
	return nil
}

// buildEntry captures the branch, touched files, diff and summary for
// one dirty-tree observation. A failed summary does not lose the entry;
// the record carries a placeholder instead.
func (w *Watcher) buildEntry(ctx context.Context, statusLines []string) (changelog.Entry, error) {
	branch, err := w.git.Branch(ctx)
	if err != nil {
		return changelog.Entry{}, fmt.Errorf("resolve branch: %w", err)
	}
	diff, err := w.git.Diff(ctx)
	if err != nil {
		return changelog.Entry{}, fmt.Errorf("git diff: %w", err)
	}

	text, err := w.summarizer.SummarizeDiff(ctx, diff)
	if err != nil {
		w.logger.Warn("diff summary failed", "error", err)
		text = fmt.Sprintf("Summary unavailable (error: %v)", err)
	}

	return changelog.Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Branch:    branch,
		Files:     gitrepo.ChangedFilesFromStatus(statusLines),
		Diff:      diff,
		Summary:   text,
	}, nil
}
