package namespace

// Kind identifies the structural category of an extracted symbol.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindTable    Kind = "table"
	KindColumn   Kind = "column"
)

// Kinds lists every symbol kind in presentation order.
var Kinds = []Kind{KindFunction, KindClass, KindMethod, KindTable, KindColumn}

// ParseKind returns the Kind for a string, or false when unknown.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Symbol is one structural declaration found in a source file. Name is
// case-preserving, exactly as written. Scope is the enclosing symbol
// (a method's class, a column's table), empty for top-level symbols.
// Hint is a short normalized aid (parameter count, column type); it is
// never part of the symbol's identity.
type Symbol struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	Scope string `json:"scope,omitempty"`
	File  string `json:"file"`
	Hint  string `json:"hint,omitempty"`

	seq int // extraction order within one build, used for tie-breaks
}

// Key is the identity of a symbol across snapshots. Two symbols are the
// same only when the full tuple matches, so unrelated same-named symbols
// in different files or scopes are never conflated.
type Key struct {
	Kind  Kind
	Scope string
	Name  string
	File  string
}

// Key returns the identity key of the symbol.
func (s Symbol) Key() Key {
	return Key{Kind: s.Kind, Scope: s.Scope, Name: s.Name, File: s.File}
}

// SkippedFile records a file excluded from a build by a read failure.
// Files simply missing at a ref are not recorded; that is an expected,
// silent case.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Set is an immutable symbol snapshot for exactly one (ref, filter)
// pair. It is built once by the Builder and never mutated afterwards.
type Set struct {
	Ref     string
	Skipped []SkippedFile

	symbols map[Key]Symbol
	order   []Key
}

func newSet(ref string) *Set {
	return &Set{Ref: ref, symbols: make(map[Key]Symbol)}
}

// add merges a symbol into the set. When two symbols in the same build
// collide on identity, the later one overwrites the earlier but keeps
// its position in extraction order.
func (s *Set) add(sym Symbol) {
	k := sym.Key()
	if prev, ok := s.symbols[k]; ok {
		sym.seq = prev.seq
		s.symbols[k] = sym
		return
	}
	sym.seq = len(s.order)
	s.symbols[k] = sym
	s.order = append(s.order, k)
}

// Len returns the number of distinct symbols in the set.
func (s *Set) Len() int { return len(s.symbols) }

// Get looks up a symbol by identity key.
func (s *Set) Get(k Key) (Symbol, bool) {
	sym, ok := s.symbols[k]
	return sym, ok
}

// Symbols returns every symbol in extraction order.
func (s *Set) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.symbols[k])
	}
	return out
}
