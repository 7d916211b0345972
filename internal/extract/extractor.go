package extract

import (
	"errors"
	"log/slog"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// ErrNoDescription is returned when a source contains no node description.
var ErrNoDescription = errors.New("no node description found")

// Extractor turns a node source file into a record. Fields the source does
// not define are left empty.
type Extractor interface {
	Extract(src []byte) (*nodeschema.Record, error)
}

// Chain tries each extractor in order and returns the first record that
// carries a name or display name.
type Chain []Extractor

// Extract implements Extractor.
func (c Chain) Extract(src []byte) (*nodeschema.Record, error) {
	lastErr := ErrNoDescription
	for _, e := range c {
		rec, err := e.Extract(src)
		if err != nil {
			slog.Debug("extractor failed", "extractor", extractorName(e), "error", err)
			lastErr = err
			continue
		}
		if rec.Name == "" && rec.DisplayName == "" {
			lastErr = ErrNoDescription
			continue
		}
		return rec, nil
	}
	return nil, lastErr
}

// Default returns the source extractor for lang backed by the pattern extractor.
func Default(lang Language, sets Sets) Chain {
	return Chain{NewSourceExtractor(lang, sets), PatternExtractor{}}
}

func extractorName(e Extractor) string {
	switch e.(type) {
	case *SourceExtractor:
		return "source"
	case PatternExtractor:
		return "pattern"
	default:
		return "custom"
	}
}
