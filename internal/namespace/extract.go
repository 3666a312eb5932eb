package namespace

import (
	"path/filepath"
	"strings"
)

// Extractor produces structural symbols from one file's content.
// Extraction is best-effort and pattern-based: missed symbols are
// acceptable, fabricated ones are not. Symbols are returned in order of
// appearance, which the classifier relies on as a stable tie-break.
type Extractor interface {
	Extract(path string, content []byte) []Symbol
}

// Registry maps file categories to extractor variants, selected by
// extension. New categories are added by registering a variant, not by
// subclassing anything.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the built-in extractors: Python
// and JS/TS sources, SQL schema files, and tree-sitter backed Go.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(&PythonExtractor{}, ".py", ".pyi")
	r.Register(&ScriptExtractor{}, ".js", ".jsx", ".mjs", ".ts", ".tsx")
	r.Register(&SchemaExtractor{}, ".sql", ".ddl")
	r.Register(NewGoExtractor(), ".go")
	return r
}

// Register binds an extractor to one or more file extensions,
// replacing any previous binding.
func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// For returns the extractor for a path, or nil when the file category
// is not recognized. Unrecognized files contribute no symbols.
func (r *Registry) For(path string) Extractor {
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}
