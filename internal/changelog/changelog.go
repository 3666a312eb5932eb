// Package changelog persists and reads the append-only change history:
// one JSONL file per UTC day, one timestamped record per observed batch
// of uncommitted changes.
package changelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one change record as written to disk.
type Entry struct {
	Timestamp string   `json:"timestamp"`
	Branch    string   `json:"branch"`
	Files     []string `json:"files"`
	Diff      string   `json:"diff"`
	Summary   string   `json:"summary"`
}

// Detail is an Entry enriched with its derived identity: the `date#line`
// ID, the date component, and whether a diff was captured.
type Detail struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Branch      string   `json:"branch"`
	Files       []string `json:"files"`
	Summary     string   `json:"summary"`
	Date        string   `json:"date"`
	DiffPresent bool     `json:"diff_present"`
	Diff        string   `json:"diff"`
}

// Record is the timeline view of a Detail: everything but the diff
// body, which can be large.
type Record struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Branch      string   `json:"branch"`
	Files       []string `json:"files"`
	Summary     string   `json:"summary"`
	Date        string   `json:"date"`
	DiffPresent bool     `json:"diff_present"`
}

// Record strips the diff body from a Detail.
func (d Detail) Record() Record {
	return Record{
		ID:          d.ID,
		Timestamp:   d.Timestamp,
		Branch:      d.Branch,
		Files:       d.Files,
		Summary:     d.Summary,
		Date:        d.Date,
		DiffPresent: d.DiffPresent,
	}
}

// Writer appends entries to the changelog directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer { return &Writer{dir: dir} }

// Append writes one entry as a JSON line to the file for the entry's
// UTC day, creating the directory and file as needed.
func (w *Writer) Append(e Entry) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create changelog dir: %w", err)
	}

	day := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
		day = ts.UTC()
	}
	path := filepath.Join(w.dir, day.Format("2006-01-02")+".jsonl")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open changelog file: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append changelog entry: %w", err)
	}
	return nil
}

// Reader loads and filters changelog entries.
type Reader struct {
	dir string
}

func NewReader(dir string) *Reader { return &Reader{dir: dir} }

// Load returns every entry across all changelog files, newest first.
// A missing directory means an empty history, not an error; malformed
// lines are skipped.
func (r *Reader) Load() ([]Detail, error) {
	files, err := r.logFiles()
	if err != nil {
		return nil, err
	}
	var entries []Detail
	for _, path := range files {
		parsed, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		return a.ID > b.ID
	})
	return entries, nil
}

// Get resolves a `date#lineno` entry ID, or returns nil when absent.
func (r *Reader) Get(id string) (*Detail, error) {
	datePart, _, _ := strings.Cut(id, "#")
	files, err := r.logFiles()
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if datePart != "" && strings.TrimSuffix(filepath.Base(path), ".jsonl") != datePart {
			continue
		}
		entries, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if entries[i].ID == id {
				return &entries[i], nil
			}
		}
	}
	return nil, nil
}

func (r *Reader) logFiles() ([]string, error) {
	if _, err := os.Stat(r.dir); os.IsNotExist(err) {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(r.dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func parseFile(path string) ([]Detail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open changelog file: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	var entries []Detail

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue // tolerate a torn or hand-edited line
		}
		date, _, _ := strings.Cut(e.Timestamp, "T")
		entries = append(entries, Detail{
			ID:          fmt.Sprintf("%s#%d", stem, lineno),
			Timestamp:   e.Timestamp,
			Branch:      e.Branch,
			Files:       e.Files,
			Summary:     e.Summary,
			Date:        date,
			DiffPresent: e.Diff != "",
			Diff:        e.Diff,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

// Filter narrows a timeline query. Zero values match everything.
type Filter struct {
	Date   string // exact date, YYYY-MM-DD
	Branch string
	File   string // case-insensitive substring of any touched path
}

// Apply filters entries into timeline records, preserving order.
func Apply(entries []Detail, f Filter) []Record {
	fileNeedle := strings.ToLower(f.File)
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if f.Date != "" && e.Date != f.Date {
			continue
		}
		if f.Branch != "" && e.Branch != f.Branch {
			continue
		}
		if fileNeedle != "" && !touchesFile(e.Files, fileNeedle) {
			continue
		}
		records = append(records, e.Record())
	}
	return records
}

func touchesFile(files []string, needle string) bool {
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
