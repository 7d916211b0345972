package extract

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// definitionSignatures are key pairs whose joint presence marks a JSON
// document as a node definition.
var definitionSignatures = [][]jp.Expr{
	{jp.MustParseString("$.displayName"), jp.MustParseString("$.properties")},
	{jp.MustParseString("$.description"), jp.MustParseString("$.inputs")},
	{jp.MustParseString("$.codex"), jp.MustParseString("$.properties")},
}

// IsNodeDefinition reports whether doc is a JSON object that looks like a
// node definition.
func IsNodeDefinition(doc any) bool {
	if _, ok := doc.(map[string]any); !ok {
		return false
	}
	for _, sig := range definitionSignatures {
		matched := true
		for _, x := range sig {
			if len(x.Get(doc)) == 0 {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// IsNodeDefinitionFile parses path and applies IsNodeDefinition.
func IsNodeDefinitionFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return IsNodeDefinition(doc), nil
}
