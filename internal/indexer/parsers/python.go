package parsers

import (
	"bytes"
	"cmp"
	"context"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/project-archmap/internal/indexer/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	"golang.org/x/text/encoding/charmap"
)

// PythonExtension is the file suffix routed to the Python parser.
const PythonExtension = ".py"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// pythonParser parses Python files.
type pythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *pythonParser {
	lang := sitter.NewLanguage(python.Language())
	return &pythonParser{
		treeSitterParser: newTreeSitterParser(lang, "python"),
	}
}

// Extensions returns the lower-cased suffixes this parser handles.
func (p *pythonParser) Extensions() []string {
	return []string{PythonExtension}
}

// ParseFile reads and parses a Python source file. Unreadable files are Degraded.
func (p *pythonParser) ParseFile(ctx context.Context, filePath string) Result {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return Degraded()
	}
	return p.ParseSource(ctx, source)
}

// ParseSource extracts functions, classes and imports from Python source.
// Source with any syntax error yields a Degraded result.
func (p *pythonParser) ParseSource(ctx context.Context, source []byte) Result {
	if ctx.Err() != nil {
		return Degraded()
	}

	result := Result{
		Status:  StatusOK,
		Symbols: []extraction.Symbol{},
		Imports: []extraction.ImportRecord{},
	}

	source = decodeSource(source)
	if len(source) == 0 {
		return result
	}

	tree, err := p.parseTree(source)
	if err != nil {
		return Degraded()
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil || rootNode.HasError() {
		return Degraded()
	}
	if usesLegacySyntax(rootNode, source) {
		return Degraded()
	}

	walkTree(rootNode, func(n *sitter.Node) bool {
		switch decl := classify(n, source).(type) {
		case functionDecl:
			result.Symbols = append(result.Symbols, extraction.Symbol{
				Kind:      extraction.KindFunction,
				Name:      decl.name,
				StartLine: decl.start,
				EndLine:   decl.end,
			})
		case classDecl:
			result.Symbols = append(result.Symbols, extraction.Symbol{
				Kind:      extraction.KindClass,
				Name:      decl.name,
				StartLine: decl.start,
				EndLine:   decl.end,
			})
		case plainImport:
			for _, module := range decl.modules {
				result.Imports = append(result.Imports, extraction.ImportRecord{
					Module: module,
					Line:   decl.line,
				})
			}
		case fromImport:
			for _, name := range decl.names {
				result.Imports = append(result.Imports, extraction.ImportRecord{
					Module: decl.module,
					Name:   &name,
					Line:   decl.line,
				})
			}
		}
		return true
	})

	slices.SortStableFunc(result.Symbols, func(a, b extraction.Symbol) int {
		return cmp.Or(
			strings.Compare(string(a.Kind), string(b.Kind)),
			strings.Compare(a.Name, b.Name),
			cmp.Compare(a.StartLine, b.StartLine),
		)
	})
	slices.SortStableFunc(result.Imports, func(a, b extraction.ImportRecord) int {
		return cmp.Or(
			strings.Compare(a.Module, b.Module),
			strings.Compare(a.NameOrEmpty(), b.NameOrEmpty()),
			cmp.Compare(a.Line, b.Line),
		)
	})

	return result
}

// usesLegacySyntax reports Python 2 constructs that tree-sitter-python accepts
// without error nodes but Python 3 rejects: print and exec statements, the
// "<>" operator and backtick repr.
func usesLegacySyntax(root *sitter.Node, source []byte) bool {
	legacy := false
	var quoted [][2]uint

	walkTree(root, func(n *sitter.Node) bool {
		if legacy {
			return false
		}
		switch n.Kind() {
		case "print_statement":
			// "print >>f, x" is also a valid Python 3 expression statement.
			legacy = findChildByType(n, "chevron") == nil
		case "exec_statement", "<>":
			legacy = true
		case "string", "comment":
			quoted = append(quoted, [2]uint{n.StartByte(), n.EndByte()})
			return false
		}
		return !legacy
	})
	if legacy {
		return true
	}

	for i, b := range source {
		if b != '`' {
			continue
		}
		inQuoted := slices.ContainsFunc(quoted, func(r [2]uint) bool {
			return uint(i) >= r[0] && uint(i) < r[1]
		})
		if !inQuoted {
			return true
		}
	}
	return false
}

// decodeSource returns source as UTF-8. Bytes that are not valid UTF-8 are
// reinterpreted as ISO-8859-1, which maps every byte to a rune.
func decodeSource(raw []byte) []byte {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// declaration is the closed set of node shapes that produce index entries.
// classify returns nil for every other node.
type declaration interface {
	isDeclaration()
}

type functionDecl struct {
	name       string
	start, end int
}

type classDecl struct {
	name       string
	start, end int
}

type plainImport struct {
	modules []string
	line    int
}

type fromImport struct {
	module string
	names  []string
	line   int
}

func (functionDecl) isDeclaration() {}
func (classDecl) isDeclaration()    {}
func (plainImport) isDeclaration()  {}
func (fromImport) isDeclaration()   {}

// classify maps a syntax node onto a declaration shape.
// "async def" parses as function_definition, and decorated definitions are
// reached through their inner definition node, so spans start at the def line.
func classify(node *sitter.Node, source []byte) declaration {
	switch node.Kind() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		return functionDecl{
			name:  extractNodeText(nameNode, source),
			start: startLine(node),
			end:   endLine(node),
		}
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		return classDecl{
			name:  extractNodeText(nameNode, source),
			start: startLine(node),
			end:   endLine(node),
		}
	case "import_statement":
		return plainImport{
			modules: importedNames(node, source, false),
			line:    startLine(node),
		}
	case "import_from_statement":
		return fromImport{
			module: fromModule(node.ChildByFieldName("module_name"), source),
			names:  importedNames(node, source, true),
			line:   startLine(node),
		}
	case "future_import_statement":
		return fromImport{
			module: "__future__",
			names:  importedNames(node, source, true),
			line:   startLine(node),
		}
	}
	return nil
}

// fromModule renders the module of a from-import. Relative imports keep only
// the dotted part, so "from . import x" has an empty module and
// "from ..pkg import x" has module "pkg".
func fromModule(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "relative_import" {
		return dottedName(findChildByType(node, "dotted_name"), source)
	}
	return dottedName(node, source)
}

// importedNames lists the imported entries of an import statement. Aliases
// report the original name. For from-imports only the entries after the
// "import" keyword count, which skips the module name.
func importedNames(node *sitter.Node, source []byte, afterKeyword bool) []string {
	names := []string{}
	seenKeyword := !afterKeyword

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "import":
			seenKeyword = true
		case "dotted_name":
			if seenKeyword {
				names = append(names, dottedName(child, source))
			}
		case "aliased_import":
			if seenKeyword {
				names = append(names, dottedName(child.ChildByFieldName("name"), source))
			}
		case "wildcard_import":
			if seenKeyword {
				names = append(names, "*")
			}
		}
	}
	return names
}
