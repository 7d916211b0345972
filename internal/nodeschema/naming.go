package nodeschema

import (
	"path/filepath"
	"strings"
)

// Well-known node name prefixes of the built-in packages.
const (
	PrefixBase      = "n8n-nodes-base."
	PrefixLangChain = "@n8n/n8n-nodes-langchain."
)

// FileName returns the record file name for a node name: package prefixes
// are stripped and path separators replaced so the result is a single
// path element.
func FileName(nodeName string) string {
	name := strings.TrimPrefix(nodeName, PrefixBase)
	name = strings.TrimPrefix(name, PrefixLangChain)
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return name + ".json"
}

// NormalizeFileName folds a record file name for cross-directory comparison:
// ".json" and a trailing "_schema" are removed and the result lower-cased.
func NormalizeFileName(file string) string {
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, ".json")
	name = strings.TrimSuffix(name, "_schema")
	return strings.ToLower(name)
}

// ContentName folds a node name as stored inside a record.
func ContentName(nodeName string) string {
	return strings.ToLower(strings.TrimPrefix(nodeName, PrefixBase))
}

// Stem returns the file name without directory or extension.
func Stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
