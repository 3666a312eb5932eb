package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"gitscribe/internal/changelog"
	"gitscribe/internal/gitrepo"
	"gitscribe/internal/namespace"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	entries, err := s.changes.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	filtered := changelog.Apply(entries, changelog.Filter{
		Date:   r.URL.Query().Get("date"),
		Branch: r.URL.Query().Get("branch"),
		File:   r.URL.Query().Get("file"),
	})

	limit := queryInt(r, "limit", 200)
	offset := queryInt(r, "offset", 0)
	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": filtered[offset:end],
		"total": total,
	})
}

func (s *Server) handleChangeByID(w http.ResponseWriter, r *http.Request) {
	entry, err := s.changes.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, errors.New("change not found"))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	commits, err := s.git.Log(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": commits})
}

func (s *Server) handleCommitByHash(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	diff, err := s.git.DiffOf(r.Context(), hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash, "diff": diff})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.git.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hash   string `json:"hash"`
		Branch string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Hash == "" {
		writeError(w, http.StatusBadRequest, errors.New("hash is required"))
		return
	}
	branch, err := s.git.CheckoutCommit(r.Context(), body.Hash, body.Branch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"branch": branch})
}

// fileNamespace is the per-file view of one snapshot, with scoped
// symbols rendered as scope.name.
type fileNamespace struct {
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Methods   []string `json:"methods"`
	Tables    []string `json:"tables"`
	Columns   []string `json:"columns"`
}

func (s *Server) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		ref = gitrepo.Worktree
	}
	set, err := s.engine.Snapshot(r.Context(), ref, namespace.Options{})
	if err != nil {
		writeError(w, resolveStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, groupByFile(set))
}

func groupByFile(set *namespace.Set) map[string]*fileNamespace {
	out := make(map[string]*fileNamespace)
	for _, sym := range set.Symbols() {
		ns := out[sym.File]
		if ns == nil {
			ns = &fileNamespace{
				Functions: []string{},
				Classes:   []string{},
				Methods:   []string{},
				Tables:    []string{},
				Columns:   []string{},
			}
			out[sym.File] = ns
		}
		name := sym.Name
		if sym.Scope != "" {
			name = sym.Scope + "." + sym.Name
		}
		switch sym.Kind {
		case namespace.KindFunction:
			ns.Functions = append(ns.Functions, name)
		case namespace.KindClass:
			ns.Classes = append(ns.Classes, name)
		case namespace.KindMethod:
			ns.Methods = append(ns.Methods, name)
		case namespace.KindTable:
			ns.Tables = append(ns.Tables, name)
		case namespace.KindColumn:
			ns.Columns = append(ns.Columns, name)
		}
	}
	for _, ns := range out {
		sort.Strings(ns.Functions)
		sort.Strings(ns.Classes)
		sort.Strings(ns.Methods)
		sort.Strings(ns.Tables)
		sort.Strings(ns.Columns)
	}
	return out
}

func (s *Server) handleNamespaceDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	refA := q.Get("ref_a")
	if refA == "" {
		refA = gitrepo.Worktree
	}
	refB := q.Get("ref_b")
	if refB == "" {
		refB = "HEAD"
	}

	opts := namespace.Options{Files: splitParam(q.Get("files"))}
	for _, k := range splitParam(q.Get("kinds")) {
		kind, ok := namespace.ParseKind(k)
		if !ok {
			writeError(w, http.StatusBadRequest, errors.New("unknown kind: "+k))
			return
		}
		opts.Kinds = append(opts.Kinds, kind)
	}

	result, err := s.engine.Diff(r.Context(), refA, refB, opts)
	if err != nil {
		writeError(w, resolveStatus(err), err)
		return
	}

	// The engine always computes unchanged entries; the timeline view
	// hides them unless asked.
	if q.Get("include_unchanged") != "true" {
		entries := result.Entries[:0]
		for _, e := range result.Entries {
			if e.Status != namespace.StatusUnchanged {
				entries = append(entries, e)
			}
		}
		result.Entries = entries
	}
	writeJSON(w, http.StatusOK, result)
}

// resolveStatus maps an unresolvable ref to 400; everything else is a
// server-side failure.
func resolveStatus(err error) int {
	var resolveErr *gitrepo.ResolveError
	if errors.As(err, &resolveErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
