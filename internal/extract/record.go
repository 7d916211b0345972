package extract

import (
	"encoding/json"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// recordFromMap builds a record from a converted description object. Only
// fields present with a usable type are set.
func recordFromMap(m map[string]any) *nodeschema.Record {
	rec := &nodeschema.Record{
		Name:        stringOf(m["name"]),
		DisplayName: stringOf(m["displayName"]),
		Description: stringOf(m["description"]),
		Group:       stringsOf(m["group"]),
		Icon:        stringOf(m["icon"]),
		Subtitle:    stringOf(m["subtitle"]),
		Inputs:      listOf(m["inputs"]),
		Outputs:     listOf(m["outputs"]),
		Credentials: credentialsOf(m["credentials"]),
		Properties:  propertiesOf(m["properties"]),
		Source:      nodeschema.SourceExtracted,
	}
	if v, ok := m["version"]; ok && v != nil {
		rec.Version = v
	}
	if d, ok := m["defaults"].(map[string]any); ok && len(d) > 0 {
		rec.Defaults = d
	}
	return rec
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func stringsOf(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// listOf keeps arrays as they are and wraps a single expression.
func listOf(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func credentialsOf(v any) []nodeschema.Credential {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []nodeschema.Credential
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := stringOf(m["name"])
		if name == "" {
			continue
		}
		req, _ := m["required"].(bool)
		out = append(out, nodeschema.Credential{Name: name, Required: req})
	}
	return out
}

// propertiesOf converts property objects through the record JSON form so
// keys the model does not name are kept in Extra.
func propertiesOf(v any) []nodeschema.Property {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []nodeschema.Property
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		data, err := json.Marshal(sanitizeProperty(m))
		if err != nil {
			continue
		}
		var p nodeschema.Property
		if err := json.Unmarshal(data, &p); err != nil || p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// sanitizeProperty drops modelled keys whose values have the wrong type,
// such as a `required` computed by an expression.
func sanitizeProperty(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "name", "displayName", "type", "description":
			if _, ok := v.(string); !ok {
				continue
			}
		case "required":
			if _, ok := v.(bool); !ok {
				continue
			}
		case "options":
			items, ok := v.([]any)
			if !ok {
				continue
			}
			v = sanitizeOptions(items)
		}
		out[k] = v
	}
	return out
}

func sanitizeOptions(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := m["name"].(string); !ok {
			continue
		}
		// Option maps may be shared through package sets; never modify them.
		opt := make(map[string]any, len(m))
		for k, v := range m {
			if k == "description" {
				if _, isString := v.(string); !isString {
					continue
				}
			}
			opt[k] = v
		}
		out = append(out, opt)
	}
	return out
}
