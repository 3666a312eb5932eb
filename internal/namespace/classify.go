package namespace

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Status classifies one diff entry.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusUnchanged Status = "unchanged"
	StatusRenamed   Status = "renamed"
)

// statusOrder is the emission order within each kind group.
var statusOrder = []Status{StatusAdded, StatusRemoved, StatusRenamed, StatusUnchanged}

// Options narrows what a diff compares. Empty slices compare
// everything. Filtering changes what is compared, never identity.
type Options struct {
	Kinds []Kind
	Files []string
}

func (o Options) wantKind(k Kind) bool {
	if len(o.Kinds) == 0 {
		return true
	}
	for _, want := range o.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// wantFile matches exact paths, directory prefixes, and glob patterns.
func (o Options) wantFile(path string) bool {
	if len(o.Files) == 0 {
		return true
	}
	for _, f := range o.Files {
		if path == f || strings.HasPrefix(path, strings.TrimSuffix(f, "/")+"/") {
			return true
		}
		if ok, err := filepath.Match(f, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Entry is one row of diff output. Renamed entries carry both sides and
// a confidence score; every other status carries exactly one side.
type Entry struct {
	Kind       Kind
	Status     Status
	Before     *Symbol
	After      *Symbol
	Confidence float64
}

// Result is the sole artifact handed to callers: the classified diff,
// the resolved refs it was computed from, and the filters applied. It
// keeps no reference to the symbol sets that produced it.
type Result struct {
	RefA    string
	RefB    string
	Filters Options
	Entries []Entry
	Skipped []SkippedFile
}

// Classify compares two symbol sets and produces the classified diff.
// Output is grouped by kind, then by status in the order added,
// removed, renamed, unchanged; within a group, entries follow
// extraction order, so results are reproducible. Unchanged entries are
// always computed; suppressing them is a presentation concern.
func Classify(a, b *Set, opts Options) *Result {
	res := &Result{
		RefA:    a.Ref,
		RefB:    b.Ref,
		Filters: opts,
		Entries: []Entry{},
	}
	res.Skipped = append(res.Skipped, a.Skipped...)
	if b != a { // a reflexive diff reuses one set for both sides
		res.Skipped = append(res.Skipped, b.Skipped...)
	}

	for _, kind := range Kinds {
		if !opts.wantKind(kind) {
			continue
		}

		var unchanged, removed []Symbol
		for _, sym := range a.Symbols() {
			if sym.Kind != kind || !opts.wantFile(sym.File) {
				continue
			}
			if _, ok := b.Get(sym.Key()); ok {
				unchanged = append(unchanged, sym)
			} else {
				removed = append(removed, sym)
			}
		}
		var added []Symbol
		for _, sym := range b.Symbols() {
			if sym.Kind != kind || !opts.wantFile(sym.File) {
				continue
			}
			if _, ok := a.Get(sym.Key()); !ok {
				added = append(added, sym)
			}
		}

		pairs := matchRenames(removed, added)
		paired := make(map[Key]bool, len(pairs)*2)
		for _, p := range pairs {
			paired[p.before.Key()] = true
			paired[p.after.Key()] = true
		}

		for _, status := range statusOrder {
			switch status {
			case StatusAdded:
				for _, sym := range added {
					if paired[sym.Key()] {
						continue
					}
					sym := sym
					res.Entries = append(res.Entries, Entry{Kind: kind, Status: StatusAdded, After: &sym})
				}
			case StatusRemoved:
				for _, sym := range removed {
					if paired[sym.Key()] {
						continue
					}
					sym := sym
					res.Entries = append(res.Entries, Entry{Kind: kind, Status: StatusRemoved, Before: &sym})
				}
			case StatusRenamed:
				for _, p := range pairs {
					p := p
					res.Entries = append(res.Entries, Entry{
						Kind:       kind,
						Status:     StatusRenamed,
						Before:     &p.before,
						After:      &p.after,
						Confidence: p.confidence,
					})
				}
			case StatusUnchanged:
				for _, sym := range unchanged {
					sym := sym
					res.Entries = append(res.Entries, Entry{Kind: kind, Status: StatusUnchanged, After: &sym})
				}
			}
		}
	}
	return res
}

// Wire shape. The engine owns this mapping; scope and confidence are
// explicit nulls when absent so consumers never guess at zero values.

type symbolJSON struct {
	Name  string  `json:"name"`
	Scope *string `json:"scope"`
	File  string  `json:"file"`
}

func toSymbolJSON(s *Symbol) *symbolJSON {
	if s == nil {
		return nil
	}
	out := &symbolJSON{Name: s.Name, File: s.File}
	if s.Scope != "" {
		scope := s.Scope
		out.Scope = &scope
	}
	return out
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var confidence *float64
	if e.Status == StatusRenamed {
		c := e.Confidence
		confidence = &c
	}
	return json.Marshal(struct {
		Kind       Kind        `json:"kind"`
		Status     Status      `json:"status"`
		Before     *symbolJSON `json:"before"`
		After      *symbolJSON `json:"after"`
		Confidence *float64    `json:"confidence"`
	}{e.Kind, e.Status, toSymbolJSON(e.Before), toSymbolJSON(e.After), confidence})
}

func (r *Result) MarshalJSON() ([]byte, error) {
	kinds := make([]string, 0, len(r.Filters.Kinds))
	for _, k := range r.Filters.Kinds {
		kinds = append(kinds, string(k))
	}
	files := r.Filters.Files
	if files == nil {
		files = []string{}
	}
	skipped := r.Skipped
	if skipped == nil {
		skipped = []SkippedFile{}
	}
	return json.Marshal(struct {
		RefA    string `json:"refA"`
		RefB    string `json:"refB"`
		Filters struct {
			Kinds []string `json:"kinds"`
			Files []string `json:"files"`
		} `json:"filters"`
		Entries []Entry       `json:"entries"`
		Skipped []SkippedFile `json:"skipped"`
	}{
		RefA: r.RefA,
		RefB: r.RefB,
		Filters: struct {
			Kinds []string `json:"kinds"`
			Files []string `json:"files"`
		}{Kinds: kinds, Files: files},
		Entries: r.Entries,
		Skipped: skipped,
	})
}
