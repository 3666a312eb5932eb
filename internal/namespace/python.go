package namespace

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// PythonExtractor detects functions, classes, methods and ORM-style
// table/column declarations in Python sources. It is line-oriented and
// tracks class nesting by indentation; it does not attempt to be a
// parser. A def anywhere inside a class body counts as a method of that
// class, matching how the rest of the system names Python symbols.
type PythonExtractor struct{}

var (
	pyClassRe = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`)
	pyDefRe   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(([^)]*)`)
	pyTableRe = regexp.MustCompile(`^\s*__tablename__\s*(?::\s*\w+\s*)?=\s*["']([^"']+)["']`)
	pyColRe   = regexp.MustCompile(`^(\s*)([A-Za-z_]\w*)\s*(?::[^=]+)?=\s*(?:\w+\.)?(?:mapped_column|Column)\(\s*([A-Za-z_][\w.]*)?`)
)

type pyClass struct {
	name   string
	indent int
	table  string // set once __tablename__ is seen
}

func (PythonExtractor) Extract(path string, content []byte) []Symbol {
	var out []Symbol
	var stack []pyClass

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indent := indentWidth(line)
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			scope := ""
			if len(stack) > 0 {
				scope = stack[len(stack)-1].name
			}
			out = append(out, Symbol{Kind: KindClass, Name: m[2], Scope: scope, File: path})
			stack = append(stack, pyClass{name: m[2], indent: indent})
			continue
		}

		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			sym := Symbol{Kind: KindFunction, Name: m[2], File: path, Hint: arityHint(m[3])}
			if len(stack) > 0 {
				sym.Kind = KindMethod
				sym.Scope = stack[len(stack)-1].name
			}
			out = append(out, sym)
			continue
		}

		// Table and column detection applies to class bodies only.
		if len(stack) == 0 {
			continue
		}
		top := &stack[len(stack)-1]
		if m := pyTableRe.FindStringSubmatch(line); m != nil {
			out = append(out, Symbol{Kind: KindTable, Name: m[1], File: path})
			top.table = m[1]
			continue
		}
		if m := pyColRe.FindStringSubmatch(line); m != nil {
			// Columns belong to the table when its name is known,
			// otherwise to the declaring class.
			scope := top.table
			if scope == "" {
				scope = top.name
			}
			out = append(out, Symbol{
				Kind:  KindColumn,
				Name:  m[2],
				Scope: scope,
				File:  path,
				Hint:  strings.ToLower(m[3]),
			})
		}
	}
	return out
}

// indentWidth counts leading whitespace; tabs count as one column,
// which is enough for relative comparisons within one file.
func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

// arityHint normalizes a raw parameter list into a parameter count,
// ignoring the conventional self/cls receiver.
func arityHint(params string) string {
	params = strings.TrimSpace(params)
	if params == "" {
		return "0 args"
	}
	parts := strings.Split(params, ",")
	n := 0
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "*" || p == "/" {
			continue
		}
		if i == 0 && (p == "self" || p == "cls" || strings.HasPrefix(p, "self:") || strings.HasPrefix(p, "cls:")) {
			continue
		}
		n++
	}
	return fmt.Sprintf("%d args", n)
}
