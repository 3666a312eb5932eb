package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSample = `package sample

import "fmt"

type Store struct {
	items map[string]int
}

type Closer interface {
	Close() error
}

type alias = Store

func New(size int) *Store {
	return &Store{items: make(map[string]int, size)}
}

func (s *Store) Put(key string, value int) {
	s.items[key] = value
}

func (s Store) Dump() {
	fmt.Println(s.items)
}
`

func findSymbol(t *testing.T, symbols []Symbol, kind Kind, name string) Symbol {
	t.Helper()
	for _, s := range symbols {
		if s.Kind == kind && s.Name == name {
			return s
		}
	}
	t.Fatalf("no %s symbol named %q in %v", kind, name, symbols)
	return Symbol{}
}

func TestGoExtractorFunctionsAndMethods(t *testing.T) {
	symbols := NewGoExtractor().Extract("store.go", []byte(goSample))

	fn := findSymbol(t, symbols, KindFunction, "New")
	assert.Empty(t, fn.Scope)
	assert.Equal(t, "1 args", fn.Hint)

	put := findSymbol(t, symbols, KindMethod, "Put")
	assert.Equal(t, "Store", put.Scope, "pointer receiver reduces to the bare type")
	assert.Equal(t, "2 args", put.Hint)

	dump := findSymbol(t, symbols, KindMethod, "Dump")
	assert.Equal(t, "Store", dump.Scope)
	assert.Equal(t, "0 args", dump.Hint)
}

func TestGoExtractorTypes(t *testing.T) {
	symbols := NewGoExtractor().Extract("store.go", []byte(goSample))

	findSymbol(t, symbols, KindClass, "Store")
	findSymbol(t, symbols, KindClass, "Closer")

	for _, s := range symbols {
		require.NotEqual(t, "alias", s.Name, "type aliases are not structural declarations")
	}
}

func TestGoExtractorEmptyAndInvalid(t *testing.T) {
	ex := NewGoExtractor()
	assert.Empty(t, ex.Extract("empty.go", nil))

	// tree-sitter parses broken input tolerantly; we only care that
	// extraction does not panic or invent symbols.
	symbols := ex.Extract("broken.go", []byte("func {{{"))
	for _, s := range symbols {
		assert.NotEmpty(t, s.Name)
	}
}
