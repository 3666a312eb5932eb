package namespace

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// ScriptExtractor detects function, class and method declarations in
// JavaScript and TypeScript sources. Like the Python extractor it is
// pattern-based: it tracks class bodies by brace depth and accepts that
// unusual formatting can hide symbols from it.
type ScriptExtractor struct{}

var (
	jsClassRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	jsFuncRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(([^)]*)`)
	jsArrowRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]+)?=\s*(?:async\s*)?(?:\(([^)]*)\)|[A-Za-z_$][\w$]*)\s*=>`)
	jsMethRe  = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+)?(?:static\s+)?(?:async\s+)?(?:get\s+|set\s+)?\*?\s*([A-Za-z_$][\w$]*)\s*\(([^)]*)\)\s*(?::[^({]+)?\{`)
)

// Control keywords that look like method calls when followed by a block.
var jsNotMethods = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "function": true, "do": true,
	"else": true, "try": true, "new": true, "typeof": true,
}

func (ScriptExtractor) Extract(path string, content []byte) []Symbol {
	var out []Symbol

	// Brace depth of the innermost open class body, -1 when outside.
	depth := 0
	classDepth := -1
	className := ""

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/*") {
			depth += braceDelta(line)
			continue
		}

		switch {
		case jsClassRe.MatchString(line):
			m := jsClassRe.FindStringSubmatch(line)
			out = append(out, Symbol{Kind: KindClass, Name: m[1], File: path})
			className = m[1]
			classDepth = depth
		case jsFuncRe.MatchString(line):
			m := jsFuncRe.FindStringSubmatch(line)
			out = append(out, Symbol{Kind: KindFunction, Name: m[1], File: path, Hint: arityHint(m[2])})
		case jsArrowRe.MatchString(line):
			m := jsArrowRe.FindStringSubmatch(line)
			out = append(out, Symbol{Kind: KindFunction, Name: m[1], File: path, Hint: arityHint(m[2])})
		case classDepth >= 0 && depth == classDepth+1:
			if m := jsMethRe.FindStringSubmatch(line); m != nil && !jsNotMethods[m[1]] {
				out = append(out, Symbol{Kind: KindMethod, Name: m[1], Scope: className, File: path, Hint: arityHint(m[2])})
			}
		}

		depth += braceDelta(line)
		if classDepth >= 0 && depth <= classDepth {
			classDepth = -1
			className = ""
		}
	}
	return out
}

// braceDelta counts net open braces on a line. String and template
// literals are not tracked; pattern extraction tolerates the drift.
func braceDelta(line string) int {
	d := 0
	for _, r := range line {
		switch r {
		case '{':
			d++
		case '}':
			d--
		}
	}
	return d
}
