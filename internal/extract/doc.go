// Package extract recovers node descriptions from the JavaScript and
// TypeScript sources shipped in community packages.
//
// Two extractors are provided. SourceExtractor parses the file with
// tree-sitter and converts the description object literal into values.
// PatternExtractor scans the text for the description object, or the whole
// text when there is none, and pulls well-known fields out by pattern; it
// is the fallback for sources the
// grammar-aware extractor cannot handle. Chain combines them.
package extract
