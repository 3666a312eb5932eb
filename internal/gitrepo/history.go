package gitrepo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Commit is one entry from the commit log.
type Commit struct {
	Hash      string `json:"hash"`
	ShortHash string `json:"short_hash"`
	Title     string `json:"title"`
}

// Log returns up to limit commits from HEAD, newest first.
func (r *Repo) Log(ctx context.Context, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := r.run(ctx, "log", "--oneline", "--no-decorate", "-n"+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

// parseLog parses `git log --oneline` output.
func parseLog(out string) []Commit {
	var commits []Commit
	for _, line := range splitLines(out) {
		hash, title, _ := strings.Cut(line, " ")
		short := hash
		if len(short) > 7 {
			short = short[:7]
		}
		commits = append(commits, Commit{Hash: hash, ShortHash: short, Title: title})
	}
	return commits
}

// Branch returns the current branch name.
func (r *Repo) Branch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// Status returns short status output with branch header.
func (r *Repo) Status(ctx context.Context) (string, error) {
	return r.run(ctx, "status", "--short", "--branch")
}

// StatusLines returns the non-empty lines of `git status --porcelain`.
// An empty result means the working tree is clean.
func (r *Repo) StatusLines(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// Diff returns the unified diff of uncommitted changes.
func (r *Repo) Diff(ctx context.Context) (string, error) {
	out, _, err := r.runRaw(ctx, "diff")
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}
	return string(out), nil
}

// DiffOf returns the full `git show` output for one commit.
func (r *Repo) DiffOf(ctx context.Context, hash string) (string, error) {
	out, stderr, err := r.runRaw(ctx, "show", hash)
	if err != nil {
		return "", fmt.Errorf("git show %s: %s", hash, stderr)
	}
	return string(out), nil
}

// ChangedFilesFromStatus extracts the file paths named by porcelain
// status lines, following rename arrows to the new path. Output is
// sorted and de-duplicated.
func ChangedFilesFromStatus(lines []string) []string {
	seen := make(map[string]bool)
	for _, line := range lines {
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		if _, renamed, ok := strings.Cut(path, " -> "); ok {
			path = renamed
		}
		path = strings.Trim(path, `"`)
		if path != "" {
			seen[path] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// CheckoutCommit creates a new branch at the given commit and switches
// to it. This is the single mutating operation in the package; it
// refuses to run on a dirty work tree or over an existing branch.
func (r *Repo) CheckoutCommit(ctx context.Context, hash, branch string) (string, error) {
	lines, err := r.StatusLines(ctx)
	if err != nil {
		return "", err
	}
	if len(lines) > 0 {
		return "", fmt.Errorf("working tree is not clean; aborting checkout")
	}

	if branch == "" {
		short := hash
		if len(short) > 7 {
			short = short[:7]
		}
		branch = "review/" + short
	}
	if _, err := r.run(ctx, "show-ref", "--verify", "refs/heads/"+branch); err == nil {
		return "", fmt.Errorf("branch %q already exists", branch)
	}

	if _, err := r.run(ctx, "checkout", "-b", branch, hash); err != nil {
		return "", err
	}
	return branch, nil
}
