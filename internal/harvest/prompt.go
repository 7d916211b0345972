package harvest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Choice is the answer to the reuse prompt.
type Choice int

const (
	ChoiceReuse Choice = iota
	ChoiceRefetch
)

// ExistingRecords returns how many record files dir already holds.
func ExistingRecords(dir string) int {
	names, err := nodeschema.ListJSON(dir)
	if err != nil {
		return 0
	}
	return len(names)
}

// PromptReuse asks whether to reuse the count records already in dir or to
// fetch again. An empty answer means reuse.
func PromptReuse(r io.Reader, w io.Writer, dir string, count int) (Choice, error) {
	reader := bufio.NewReader(r)

	fmt.Fprintf(w, "\nFound %d existing record files in %s", count, dir)
	if last := ReadFreshnessMarker(dir); !last.IsZero() {
		fmt.Fprintf(w, " (fetched %s)", last.Format(time.RFC3339))
	}
	fmt.Fprintln(w, ".")
	fmt.Fprintln(w, "  [e] use existing files")
	fmt.Fprintln(w, "  [r] re-fetch from server")
	fmt.Fprint(w, "Choice [e/r] (default e): ")

	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return ChoiceReuse, fmt.Errorf("reading choice: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "e":
		return ChoiceReuse, nil
	case "r":
		return ChoiceRefetch, nil
	}
	return ChoiceReuse, fmt.Errorf("invalid choice %q: choose e or r", strings.TrimSpace(line))
}
