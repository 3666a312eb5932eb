package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Worktree is the pseudo-ref naming the current working tree. It is
// matched case-insensitively and resolves to itself rather than to a
// commit hash.
const Worktree = "WORKTREE"

// Repo is a handle on one git repository. Everything except
// CheckoutCommit is a read-only query.
type Repo struct {
	Dir string
}

// ResolveError reports a ref that cannot be resolved to a snapshot.
type ResolveError struct {
	Ref string
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve ref %q: %v", e.Ref, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Open binds to a repository root, verifying it is inside a work tree.
func Open(ctx context.Context, dir string) (*Repo, error) {
	r := &Repo{Dir: dir}
	if _, err := r.run(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, fmt.Errorf("not a git repository: %s: %w", dir, err)
	}
	return r, nil
}

// ResolveRef resolves a user-supplied ref (branch, tag, commit hash, or
// the WORKTREE pseudo-ref) to a concrete snapshot handle.
func (r *Repo) ResolveRef(ctx context.Context, ref string) (string, error) {
	if strings.EqualFold(ref, Worktree) {
		return Worktree, nil
	}
	hash, err := r.run(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", &ResolveError{Ref: ref, Err: err}
	}
	return hash, nil
}

// ReadFile returns a file's content as of a resolved handle. A path
// that does not exist at the handle yields an error matching
// fs.ErrNotExist; that is an expected case, distinct from I/O failure.
func (r *Repo) ReadFile(ctx context.Context, handle, path string) ([]byte, error) {
	if handle == Worktree {
		clean := filepath.Clean(path)
		if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
			return nil, fmt.Errorf("path escapes repository: %s", path)
		}
		return os.ReadFile(filepath.Join(r.Dir, clean))
	}

	out, stderr, err := r.runRaw(ctx, "show", handle+":"+path)
	if err != nil {
		if isMissingPath(stderr) {
			return nil, fmt.Errorf("%s at %s: %w", path, handle, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("git show %s:%s: %s", handle, path, stderr)
	}
	return out, nil
}

// ListFiles enumerates the tracked files at a handle.
func (r *Repo) ListFiles(ctx context.Context, handle string) ([]string, error) {
	var out string
	var err error
	if handle == Worktree {
		out, err = r.run(ctx, "ls-files")
	} else {
		out, err = r.run(ctx, "ls-tree", "-r", "--name-only", handle)
	}
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// isMissingPath classifies `git show` stderr: both messages mean the
// path is absent at the ref, not that the read failed.
func isMissingPath(stderr string) bool {
	return strings.Contains(stderr, "does not exist") ||
		strings.Contains(stderr, "exists on disk, but not in")
}

// run executes a git subcommand and returns trimmed stdout. Errors
// carry stderr so callers see what git actually complained about.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	out, stderr, err := r.runRaw(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("git %s: %s", args[0], stderr)
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *Repo) runRaw(ctx context.Context, args ...string) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, msg, err
	}
	return stdout.Bytes(), "", nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
