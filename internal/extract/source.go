package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Language selects the grammar used to parse a source file.
type Language int

const (
	JavaScript Language = iota
	TypeScript
)

func (l Language) String() string {
	if l == TypeScript {
		return "typescript"
	}
	return "javascript"
}

func (l Language) grammar() *sitter.Language {
	if l == TypeScript {
		return typescript.GetLanguage()
	}
	return javascript.GetLanguage()
}

// LanguageFor picks the grammar for a file by extension.
func LanguageFor(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return TypeScript
	default:
		return JavaScript
	}
}

// Sets maps exported identifiers to their converted array or object values.
// Description modules export property lists that node files spread into
// their properties; Sets carries them across files.
type Sets map[string]any

// Merge copies other into s, keeping existing entries.
func (s Sets) Merge(other Sets) {
	for k, v := range other {
		if _, ok := s[k]; !ok {
			s[k] = v
		}
	}
}

// SourceExtractor parses a node source with tree-sitter and converts the
// description object literal into a record.
type SourceExtractor struct {
	lang Language
	sets Sets
}

// NewSourceExtractor returns an extractor for lang. sets resolves
// identifiers the source imports from other modules; it may be nil.
func NewSourceExtractor(lang Language, sets Sets) *SourceExtractor {
	return &SourceExtractor{lang: lang, sets: sets}
}

// Extract implements Extractor. It recognises `this.description = {...}`
// assignments and `description = {...}` class fields.
func (e *SourceExtractor) Extract(src []byte) (*nodeschema.Record, error) {
	root, err := parse(e.lang, src)
	if err != nil {
		return nil, err
	}

	c := newConverter(src, e.sets)
	c.collectBindings(root)

	obj := findDescription(root, src)
	if obj == nil {
		return nil, ErrNoDescription
	}
	desc, ok := c.value(obj).(map[string]any)
	if !ok {
		return nil, ErrNoDescription
	}
	return recordFromMap(desc), nil
}

// CollectSets returns the arrays and objects a module exports or declares,
// converted to values. Identifiers are resolved against the module itself
// and then against known.
func CollectSets(lang Language, src []byte, known Sets) (Sets, error) {
	root, err := parse(lang, src)
	if err != nil {
		return nil, err
	}
	c := newConverter(src, known)
	c.collectBindings(root)

	out := make(Sets, len(c.bindings))
	for name := range c.bindings {
		if v, ok := c.resolve(name); ok {
			out[name] = v
		}
	}
	return out, nil
}

func parse(lang Language, src []byte) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", lang, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parsing %s: no tree", lang)
	}
	return tree.RootNode(), nil
}

// walk visits n and its named descendants depth first until fn returns false.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

// findDescription returns the object literal assigned to the node
// description, or nil.
func findDescription(root *sitter.Node, src []byte) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "assignment_expression":
			left := n.ChildByFieldName("left")
			if left == nil || left.Type() != "member_expression" {
				return true
			}
			obj := left.ChildByFieldName("object")
			prop := left.ChildByFieldName("property")
			if obj == nil || prop == nil || obj.Type() != "this" || prop.Content(src) != "description" {
				return true
			}
			if v := unwrap(n.ChildByFieldName("right")); v != nil && v.Type() == "object" {
				found = v
				return false
			}
		case "field_definition", "public_field_definition":
			name := n.ChildByFieldName("property")
			if name == nil {
				name = n.ChildByFieldName("name")
			}
			if name == nil || name.Content(src) != "description" {
				return true
			}
			if v := unwrap(n.ChildByFieldName("value")); v != nil && v.Type() == "object" {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

// unwrap strips parentheses and type assertions around an expression.
func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression", "type_assertion":
			next := n.NamedChild(0)
			if next == nil || next.Type() == n.Type() {
				return n
			}
			// A type assertion lists the type first.
			if n.Type() == "type_assertion" && n.NamedChildCount() > 1 {
				next = n.NamedChild(1)
			}
			n = next
		default:
			return n
		}
	}
	return nil
}
