package coupling

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// languageFor maps a file extension to a tree-sitter grammar. Unknown
// extensions return nil, and the extractors then return nothing for that
// file; there is no non-tree-sitter fallback scanner.
func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return golang.GetLanguage()
	case ".ts", ".tsx":
		return typescript.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	case ".py", ".pyi":
		return python.GetLanguage()
	case ".rb":
		return ruby.GetLanguage()
	default:
		return nil
	}
}

// parse parses source with the grammar for path. Returns a nil tree (not an
// error) for an unrecognized extension or a parse failure -- every caller
// treats "no tree" as "nothing to extract", never a hard failure.
func parse(ctx context.Context, path string, source []byte) *sitter.Tree {
	lang := languageFor(path)
	if lang == nil {
		return nil
	}
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil
	}
	return tree
}

// walk visits every node in the tree rooted at node, depth first.
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}

var typeNodeKinds = map[string]bool{
	"type_declaration":      true, // go
	"type_spec":              true, // go
	"interface_declaration":  true, // ts/java
	"class_declaration":       true, // ts/js
	"type_alias_declaration":  true, // ts
	"enum_declaration":        true, // ts/java
	"class_definition":        true, // python/ruby
	"module":                  true, // ruby
}

var typeNameDenylist = map[string]bool{
	"Props": true, "State": true, "Options": true, "Config": true, "Data": true,
	"Input": true, "Output": true, "Params": true, "Result": true, "Item": true,
}

// ExtractTypeNames returns declared type/interface/class/enum identifiers at
// least 4 characters long and not in the generic-name denylist.
func ExtractTypeNames(ctx context.Context, path string, source []byte) []string {
	tree := parse(ctx, path, source)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	seen := make(map[string]bool)
	var names []string
	walk(tree.RootNode(), func(n *sitter.Node) bool {
		if !typeNodeKinds[n.Type()] {
			return true
		}
		nameNode := n.ChildByFieldName("name")
		name := nodeText(nameNode, source)
		if name == "" {
			return true
		}
		if len(name) <= 3 || typeNameDenylist[name] || seen[name] {
			return true
		}
		seen[name] = true
		names = append(names, name)
		return true
	})
	return names
}

var stringNodeKinds = map[string]bool{
	"interpreted_string_literal": true, // go
	"raw_string_literal":         true, // go
	"string":                     true, // python/ruby/js
	"string_literal":             true, // ts/js/java
	"template_string":            true, // js/ts
}

// ExtractStringLiterals returns string-literal contents at least 10 chars,
// excluding URLs, import-like paths, MIME types, class-name-like single
// CamelCase words, and single-word strings.
func ExtractStringLiterals(ctx context.Context, path string, source []byte) []string {
	tree := parse(ctx, path, source)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var literals []string
	walk(tree.RootNode(), func(n *sitter.Node) bool {
		if !stringNodeKinds[n.Type()] {
			return true
		}
		text := strings.Trim(nodeText(n, source), "\"'`")
		if isMeaningfulLiteral(text) {
			literals = append(literals, text)
		}
		return true
	})
	return literals
}

func isMeaningfulLiteral(s string) bool {
	if len(s) < 10 {
		return false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return false
	}
	if strings.Contains(s, "/") && !strings.Contains(s, " ") && strings.Count(s, "/") >= 1 && looksLikePath(s) {
		return false
	}
	if strings.Contains(s, "/") && strings.Count(s, "/") == 1 && !strings.Contains(s, " ") {
		// "type/subtype" MIME-ish strings
		return false
	}
	if !strings.Contains(s, " ") {
		// single "word" (no spaces) that isn't a path: likely an identifier or const
		return false
	}
	return true
}

func looksLikePath(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") || strings.HasPrefix(s, "/") ||
		strings.Count(s, "/") >= 2
}

func readFile(repoRoot, relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(repoRoot, relPath))
}
