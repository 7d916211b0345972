package nodeschema

import (
	"bytes"
	"encoding/json"
)

// Record sources.
const (
	SourceAPI       = "api"
	SourceNPM       = "npm"
	SourceExtracted = "extracted"
)

// Record describes one node: its identity and its configurable parameters.
// Completeness varies by origin; every field except Name may be empty.
type Record struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName,omitempty"`
	Description string         `json:"description,omitempty"`
	Group       []string       `json:"group,omitempty"`
	Version     any            `json:"version,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Defaults    map[string]any `json:"defaults,omitempty"`
	Inputs      []any          `json:"inputs,omitempty"`
	Outputs     []any          `json:"outputs,omitempty"`
	Credentials []Credential   `json:"credentials,omitempty"`
	Properties  []Property     `json:"properties,omitempty"`
	Source      string         `json:"source,omitempty"`
	SourceFile  string         `json:"sourceFile,omitempty"`
}

// Credential names a credential type a node accepts.
type Credential struct {
	Name     string `json:"name"`
	Required bool   `json:"required,omitempty"`
}

// Property is one node parameter. Keys not modelled here are kept in
// Extra and written back unchanged.
type Property struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName,omitempty"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Options     []Option `json:"options,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Option is one choice of an options-typed property.
type Option struct {
	Name        string `json:"name"`
	Value       any    `json:"value,omitempty"`
	Description string `json:"description,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	propertyKeys = []string{"name", "displayName", "type", "description", "default", "required", "options"}
	optionKeys   = []string{"name", "value", "description"}
)

// MarshalJSON writes the modelled fields plus any preserved extras.
func (p Property) MarshalJSON() ([]byte, error) {
	type alias Property
	base, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(base, p.Extra)
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
func (p *Property) UnmarshalJSON(data []byte) error {
	type alias Property
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extraFields(data, propertyKeys)
	if err != nil {
		return err
	}
	*p = Property(a)
	p.Extra = extra
	return nil
}

// MarshalJSON writes the modelled fields plus any preserved extras.
func (o Option) MarshalJSON() ([]byte, error) {
	type alias Option
	base, err := json.Marshal(alias(o))
	if err != nil {
		return nil, err
	}
	return mergeExtra(base, o.Extra)
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
func (o *Option) UnmarshalJSON(data []byte) error {
	type alias Option
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extraFields(data, optionKeys)
	if err != nil {
		return err
	}
	*o = Option(a)
	o.Extra = extra
	return nil
}

func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func mergeExtra(base []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Label returns the display name, falling back to the node name.
func (r *Record) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}
