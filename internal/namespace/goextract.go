package namespace

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor extracts Go declarations with tree-sitter. Functions map
// to function symbols, methods to method symbols scoped by their
// receiver type, and struct/interface types to class symbols (the
// closest structural analog across the supported languages).
type GoExtractor struct {
	lang *sitter.Language
}

const goSymbolQuery = `
	(function_declaration) @func
	(method_declaration) @method
	(type_spec) @type
`

// NewGoExtractor returns a tree-sitter backed Go extractor.
func NewGoExtractor() *GoExtractor {
	return &GoExtractor{lang: golang.GetLanguage()}
}

func (g *GoExtractor) Extract(path string, content []byte) []Symbol {
	parser := sitter.NewParser()
	parser.SetLanguage(g.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}

	query, err := sitter.NewQuery([]byte(goSymbolQuery), g.lang)
	if err != nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	var out []Symbol
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			var sym *Symbol
			switch query.CaptureNameForId(c.Index) {
			case "func":
				sym = g.functionSymbol(c.Node, content, path, KindFunction)
			case "method":
				sym = g.functionSymbol(c.Node, content, path, KindMethod)
			case "type":
				sym = g.typeSymbol(c.Node, content, path)
			}
			if sym != nil {
				out = append(out, *sym)
			}
		}
	}
	return out
}

func (g *GoExtractor) functionSymbol(node *sitter.Node, src []byte, path string, kind Kind) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sym := &Symbol{
		Kind: kind,
		Name: nameNode.Content(src),
		File: path,
		Hint: goArityHint(node.ChildByFieldName("parameters"), src),
	}
	if kind == KindMethod {
		sym.Scope = receiverTypeName(node.ChildByFieldName("receiver"), src)
	}
	return sym
}

// typeSymbol reports struct and interface declarations as class
// symbols; plain type aliases are not structural and are skipped.
func (g *GoExtractor) typeSymbol(node *sitter.Node, src []byte, path string) *Symbol {
	nameNode := node.ChildByFieldName("name")
	typeNode := node.ChildByFieldName("type")
	if nameNode == nil || typeNode == nil {
		return nil
	}
	switch typeNode.Type() {
	case "struct_type", "interface_type":
		return &Symbol{Kind: KindClass, Name: nameNode.Content(src), File: path}
	}
	return nil
}

// receiverTypeName extracts the bare receiver type from a method
// declaration, stripping pointers, generics and package qualifiers.
func receiverTypeName(receiver *sitter.Node, src []byte) string {
	if receiver == nil {
		return ""
	}
	var typeName string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if typeName != "" || n == nil {
			return
		}
		if n.Type() == "type_identifier" {
			typeName = n.Content(src)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(receiver)
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		typeName = typeName[i+1:]
	}
	return strings.TrimPrefix(typeName, "*")
}

func goArityHint(params *sitter.Node, src []byte) string {
	if params == nil {
		return "0 args"
	}
	n := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child.Type() != "parameter_declaration" && child.Type() != "variadic_parameter_declaration" {
			continue
		}
		// A single declaration may bind several names to one type.
		names := 0
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if child.NamedChild(j).Type() == "identifier" {
				names++
			}
		}
		if names == 0 {
			names = 1
		}
		n += names
	}
	return fmt.Sprintf("%d args", n)
}
