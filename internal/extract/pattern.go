package extract

import (
	"regexp"
	"strings"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

var (
	descriptionStarts = []*regexp.Regexp{
		regexp.MustCompile(`this\.description\s*=\s*\{`),
		regexp.MustCompile(`(?m)^\s*(?:(?:public|readonly)\s+)*description\s*(?::\s*[\w.<>\[\]]+\s*)?=\s*\{`),
	}
	keyPattern = regexp.MustCompile(`^(?:'([^']+)'|"([^"]+)"|([A-Za-z_$][\w$]*))\s*:`)

	// looseFields are read from anywhere in the text when no description
	// object is found.
	looseFields = []string{"name", "displayName", "description", "icon", "subtitle"}
)

var loosePatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(looseFields))
	for _, f := range looseFields {
		out[f] = regexp.MustCompile(`(?:^|[^\w$.])['"]?` + f + `['"]?\s*:\s*(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")`)
	}
	return out
}()

// PatternExtractor finds the description object with a string-aware
// brace scan and reads its fields by pattern. Without a description object
// the whole text is scanned instead. It needs no grammar and tolerates
// sources tree-sitter rejects. Fields it cannot read are omitted rather
// than reported, so the record may be empty.
type PatternExtractor struct{}

// Extract implements Extractor.
func (PatternExtractor) Extract(src []byte) (*nodeschema.Record, error) {
	text := string(src)
	if body, ok := descriptionBody(text); ok {
		return recordFromMap(parseObject(body)), nil
	}
	return recordFromMap(looseObject(text)), nil
}

// looseObject reads top-level key/value pairs of text, then fills the
// string fields still missing from their first occurrence anywhere.
func looseObject(text string) map[string]any {
	m := parseObject(text)
	for _, f := range looseFields {
		if s, ok := m[f].(string); ok && s != "" {
			continue
		}
		match := loosePatterns[f].FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if match[1] != "" {
			m[f] = unquote("'" + match[1] + "'")
		} else {
			m[f] = unquote(`"` + match[2] + `"`)
		}
	}
	return m
}

// descriptionBody returns the text between the braces of the description
// object.
func descriptionBody(text string) (string, bool) {
	for _, re := range descriptionStarts {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		open := loc[1] - 1
		end, ok := matchBrace(text, open)
		if !ok {
			continue
		}
		return text[open+1 : end], true
	}
	return "", false
}

// skipLiteral returns the index just past a string literal or comment that
// starts at i, or i when none does.
func skipLiteral(s string, i int) int {
	switch s[i] {
	case '\'', '"', '`':
		q := s[i]
		for j := i + 1; j < len(s); j++ {
			if s[j] == '\\' {
				j++
				continue
			}
			if s[j] == q {
				return j + 1
			}
		}
		return len(s)
	case '/':
		if i+1 >= len(s) {
			return i
		}
		switch s[i+1] {
		case '/':
			if k := strings.IndexByte(s[i:], '\n'); k >= 0 {
				return i + k + 1
			}
			return len(s)
		case '*':
			if k := strings.Index(s[i+2:], "*/"); k >= 0 {
				return i + 2 + k + 2
			}
			return len(s)
		}
	}
	return i
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); {
		if j := skipLiteral(s, i); j != i {
			i = j
			continue
		}
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// splitTopLevel splits s at commas outside any bracket, string or comment.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); {
		if j := skipLiteral(s, i); j != i {
			i = j
			continue
		}
		switch s[i] {
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
		i++
	}
	if rest := s[start:]; strings.TrimSpace(rest) != "" {
		parts = append(parts, rest)
	}
	return parts
}

// stripComments removes leading comments from a segment.
func stripComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "//") && !strings.HasPrefix(s, "/*") {
			return s
		}
		s = s[skipLiteral(s, 0):]
	}
}

func parseObject(body string) map[string]any {
	out := make(map[string]any)
	for _, part := range splitTopLevel(body) {
		part = stripComments(part)
		m := keyPattern.FindStringSubmatch(part)
		if m == nil {
			// Spreads and methods are not data.
			continue
		}
		key := m[1] + m[2] + m[3]
		out[key] = parseLiteral(part[len(m[0]):])
	}
	return out
}

func parseArray(body string) []any {
	out := []any{}
	for _, part := range splitTopLevel(body) {
		part = stripComments(part)
		if part == "" || strings.HasPrefix(part, "...") {
			continue
		}
		out = append(out, parseLiteral(part))
	}
	return out
}

// parseLiteral converts literal text to a value. Anything that is not a
// literal is returned as trimmed source text.
func parseLiteral(raw string) any {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), " as const")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch {
	case raw[0] == '{' && raw[len(raw)-1] == '}':
		if end, ok := matchBrace(raw, 0); ok && end == len(raw)-1 {
			return parseObject(raw[1:end])
		}
	case raw[0] == '[' && raw[len(raw)-1] == ']':
		return parseArray(raw[1 : len(raw)-1])
	case raw[0] == '\'' || raw[0] == '"':
		if skipLiteral(raw, 0) == len(raw) {
			return unquote(raw)
		}
	case raw[0] == '`':
		if skipLiteral(raw, 0) == len(raw) && !strings.Contains(raw, "${") {
			return raw[1 : len(raw)-1]
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null", "undefined":
		return nil
	}
	if f, ok := number(raw).(float64); ok {
		return f
	}
	return raw
}
