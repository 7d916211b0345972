package harvest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// NodeInfo is one row of the node index.
type NodeInfo struct {
	File        string `json:"filename"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// Export builds the node index for the record files in dir. A record
// without a display name (or with the placeholder) is labelled with its
// file stem.
func Export(dir string) ([]NodeInfo, error) {
	entries, err := nodeschema.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	infos := make([]NodeInfo, 0, len(entries))
	for _, e := range entries {
		display := e.Record.DisplayName
		if display == "" || display == DefaultDisplayName {
			display = nodeschema.Stem(e.File)
		}
		infos = append(infos, NodeInfo{
			File:        e.File,
			Name:        e.Record.Name,
			DisplayName: display,
			Description: e.Record.Description,
		})
	}
	return infos, nil
}

// WriteCSV writes the node index as CSV with a header row.
func WriteCSV(w io.Writer, infos []NodeInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"filename", "name", "displayName", "description"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, info := range infos {
		if err := cw.Write([]string{info.File, info.Name, info.DisplayName, info.Description}); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
