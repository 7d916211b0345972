package extract

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// converter turns object-literal syntax into Go values: map[string]any,
// []any, string, float64, bool and nil. Expressions that are not literals
// are kept as their source text.
type converter struct {
	src      []byte
	known    Sets
	bindings map[string]*sitter.Node
	memo     map[string]any
	visiting map[string]bool
}

func newConverter(src []byte, known Sets) *converter {
	return &converter{
		src:      src,
		known:    known,
		bindings: make(map[string]*sitter.Node),
		memo:     make(map[string]any),
		visiting: make(map[string]bool),
	}
}

// collectBindings records every array or object bound to a name, either by
// a variable declaration or by an `exports.X =` assignment.
func (c *converter) collectBindings(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "variable_declarator":
			name := n.ChildByFieldName("name")
			value := unwrap(n.ChildByFieldName("value"))
			if name != nil && name.Type() == "identifier" && isContainer(value) {
				c.bindings[name.Content(c.src)] = value
			}
		case "assignment_expression":
			left := n.ChildByFieldName("left")
			value := unwrap(n.ChildByFieldName("right"))
			if left == nil || left.Type() != "member_expression" || !isContainer(value) {
				return true
			}
			obj := left.ChildByFieldName("object")
			prop := left.ChildByFieldName("property")
			if obj == nil || prop == nil {
				return true
			}
			if target := obj.Content(c.src); target == "exports" || target == "module.exports" {
				c.bindings[prop.Content(c.src)] = value
			}
		}
		return true
	})
}

func isContainer(n *sitter.Node) bool {
	return n != nil && (n.Type() == "array" || n.Type() == "object")
}

// resolve returns the value bound to name in this module or in known.
func (c *converter) resolve(name string) (any, bool) {
	if v, ok := c.memo[name]; ok {
		return v, true
	}
	if n, ok := c.bindings[name]; ok && !c.visiting[name] {
		c.visiting[name] = true
		v := c.value(n)
		delete(c.visiting, name)
		c.memo[name] = v
		return v, true
	}
	if v, ok := c.known[name]; ok {
		return v, true
	}
	return nil, false
}

// reference names the binding an identifier or member expression points
// at: `fooFields` and `descriptions_1.fooFields` both yield "fooFields".
func (c *converter) reference(n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "identifier":
		return n.Content(c.src), true
	case "member_expression":
		if prop := n.ChildByFieldName("property"); prop != nil {
			return prop.Content(c.src), true
		}
	}
	return "", false
}

func (c *converter) value(n *sitter.Node) any {
	n = unwrap(n)
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "object":
		return c.object(n)
	case "array":
		return c.array(n)
	case "string":
		return unquote(n.Content(c.src))
	case "template_string":
		return c.template(n)
	case "number":
		return number(n.Content(c.src))
	case "true":
		return true
	case "false":
		return false
	case "null", "undefined":
		return nil
	case "unary_expression":
		text := n.Content(c.src)
		if strings.HasPrefix(text, "-") {
			if f, ok := number(text).(float64); ok {
				return f
			}
		}
		return text
	case "identifier", "member_expression":
		if name, ok := c.reference(n); ok {
			if v, ok := c.resolve(name); ok {
				return v
			}
		}
		return n.Content(c.src)
	default:
		return n.Content(c.src)
	}
}

func (c *converter) object(n *sitter.Node) map[string]any {
	out := make(map[string]any)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "pair":
			key := c.key(child.ChildByFieldName("key"))
			if key == "" {
				continue
			}
			out[key] = c.value(child.ChildByFieldName("value"))
		case "shorthand_property_identifier":
			name := child.Content(c.src)
			if v, ok := c.resolve(name); ok {
				out[name] = v
			} else {
				out[name] = name
			}
		case "spread_element":
			if m, ok := c.spread(child).(map[string]any); ok {
				for k, v := range m {
					out[k] = v
				}
			}
		}
	}
	return out
}

func (c *converter) array(n *sitter.Node) []any {
	out := make([]any, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		if child.Type() == "spread_element" {
			if items, ok := c.spread(child).([]any); ok {
				out = append(out, items...)
			}
			continue
		}
		out = append(out, c.value(child))
	}
	return out
}

// spread resolves the operand of a spread element. Unresolvable operands
// yield nil and are dropped by the caller.
func (c *converter) spread(n *sitter.Node) any {
	arg := unwrap(n.NamedChild(0))
	if arg == nil {
		return nil
	}
	if isContainer(arg) {
		return c.value(arg)
	}
	name, ok := c.reference(arg)
	if !ok {
		return nil
	}
	v, ok := c.resolve(name)
	if !ok {
		slog.Debug("unresolved spread", "name", name)
		return nil
	}
	return v
}

func (c *converter) key(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "string":
		return unquote(n.Content(c.src))
	case "computed_property_name":
		if inner := n.NamedChild(0); inner != nil && inner.Type() == "string" {
			return unquote(inner.Content(c.src))
		}
		return n.Content(c.src)
	default:
		return n.Content(c.src)
	}
}

func (c *converter) template(n *sitter.Node) string {
	text := n.Content(c.src)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil && child.Type() == "template_substitution" {
			return text
		}
	}
	return strings.Trim(text, "`")
}

// unquote decodes a single- or double-quoted JavaScript string literal.
// Undecodable escapes leave the raw body.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	body = strings.ReplaceAll(body, `\'`, `'`)
	if raw[0] == '\'' {
		body = strings.ReplaceAll(body, `\"`, `"`)
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	s, err := strconv.Unquote(`"` + body + `"`)
	if err != nil {
		return body
	}
	return s
}

func number(text string) any {
	clean := strings.ReplaceAll(text, "_", "")
	if f, err := strconv.ParseFloat(clean, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		return float64(i)
	}
	return text
}
