package namespace

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// SchemaExtractor detects table and column declarations in SQL schema
// files. It understands CREATE TABLE bodies (single- or multi-line) and
// ALTER TABLE ... ADD COLUMN statements; each column's scope is its
// table name.
type SchemaExtractor struct{}

var (
	sqlCreateRe = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:TEMP(?:ORARY)?\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?["` + "`" + `]?([\w.]+)["` + "`" + `]?`)
	sqlAlterRe  = regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE\s+(?:ONLY\s+)?["` + "`" + `]?([\w.]+)["` + "`" + `]?\s+ADD\s+(?:COLUMN\s+)?["` + "`" + `]?([A-Za-z_]\w*)["` + "`" + `]?\s*([A-Za-z]\w*(?:\([^)]*\))?)?`)
	sqlColumnRe = regexp.MustCompile(`^["` + "`" + `]?([A-Za-z_]\w*)["` + "`" + `]?\s+([A-Za-z]\w*(?:\([^)]*\))?)`)
)

// Leading keywords that introduce table constraints, not columns.
var sqlConstraintWords = map[string]bool{
	"primary": true, "foreign": true, "unique": true, "constraint": true,
	"check": true, "key": true, "index": true, "exclude": true,
	"like": true, "references": true,
}

func (e SchemaExtractor) Extract(path string, content []byte) []Symbol {
	var out []Symbol
	table := "" // non-empty while inside a CREATE TABLE body

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		if m := sqlCreateRe.FindStringSubmatch(line); m != nil {
			out = append(out, Symbol{Kind: KindTable, Name: m[1], File: path})
			table = m[1]
			if open := strings.Index(line, "("); open >= 0 {
				body := line[open+1:]
				if close := strings.LastIndex(body, ")"); close >= 0 {
					body = body[:close]
					out = append(out, e.inlineColumns(path, m[1], body)...)
					table = ""
					continue
				}
				out = append(out, e.inlineColumns(path, m[1], body)...)
			}
			continue
		}

		if m := sqlAlterRe.FindStringSubmatch(line); m != nil {
			out = append(out, Symbol{
				Kind:  KindColumn,
				Name:  m[2],
				Scope: m[1],
				File:  path,
				Hint:  strings.ToLower(m[3]),
			})
			continue
		}

		if table == "" {
			continue
		}
		if strings.HasPrefix(line, ")") {
			table = ""
			continue
		}
		if sym, ok := e.columnDef(path, table, line); ok {
			out = append(out, sym)
		}
		if strings.HasSuffix(line, ");") {
			table = ""
		}
	}
	return out
}

// inlineColumns parses comma-separated column definitions that share a
// line with the CREATE TABLE itself.
func (e SchemaExtractor) inlineColumns(path, table, body string) []Symbol {
	var out []Symbol
	for _, def := range splitTopLevel(body) {
		if sym, ok := e.columnDef(path, table, def); ok {
			out = append(out, sym)
		}
	}
	return out
}

func (e SchemaExtractor) columnDef(path, table, def string) (Symbol, bool) {
	def = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(def), ","))
	m := sqlColumnRe.FindStringSubmatch(def)
	if m == nil || sqlConstraintWords[strings.ToLower(m[1])] {
		return Symbol{}, false
	}
	return Symbol{
		Kind:  KindColumn,
		Name:  m[1],
		Scope: table,
		File:  path,
		Hint:  strings.ToLower(m[2]),
	}, true
}

// splitTopLevel splits on commas outside parentheses, so types like
// DECIMAL(10,2) survive intact.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
