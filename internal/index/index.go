// Package index stores a record directory in a SQLite catalogue so nodes
// can be searched without re-reading every file.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/report"
)

// DefaultFile is the catalogue file name inside the workspace.
const DefaultFile = "catalogue.db"

// ErrNotFound is returned by Get for unknown node names.
var ErrNotFound = errors.New("node not in index")

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	file TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	display_name TEXT,
	description TEXT,
	category TEXT NOT NULL,
	ai INTEGER NOT NULL DEFAULT 0,
	property_count INTEGER NOT NULL DEFAULT 0,
	record JSON NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
CREATE INDEX IF NOT EXISTS idx_nodes_category ON nodes(category);
`

// Row is one catalogue entry without its record body.
type Row struct {
	File          string `json:"file"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	AI            bool   `json:"ai"`
	PropertyCount int    `json:"propertyCount"`
}

// Index is an open catalogue.
type Index struct {
	db *sql.DB
}

// Open opens or creates the catalogue at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Build replaces the catalogue contents with the records of dir and
// returns the number indexed.
func (ix *Index) Build(ctx context.Context, dir string) (int, error) {
	entries, err := nodeschema.LoadDir(dir)
	if err != nil {
		return 0, err
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes"); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO nodes (file, name, display_name, description, category, ai, property_count, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		rec := e.Record
		body, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encoding %s: %w", e.File, err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.File, rec.Name, rec.DisplayName, rec.Description,
			report.Classify(e.File, rec), report.IsAIRelated(rec), len(rec.Properties), string(body),
		); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", e.File, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(entries), nil
}

// Query returns rows whose name, display name or description contains q,
// case-insensitively, ordered by display name. An empty q lists everything.
// limit <= 0 means no limit.
func (ix *Index) Query(ctx context.Context, q string, limit int) ([]Row, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	query := `
		SELECT file, name, COALESCE(display_name, ''), COALESCE(description, ''), category, ai, property_count
		FROM nodes
		WHERE lower(name) LIKE ?1 ESCAPE '\'
		   OR lower(COALESCE(display_name, '')) LIKE ?1 ESCAPE '\'
		   OR lower(COALESCE(description, '')) LIKE ?1 ESCAPE '\'
		ORDER BY lower(COALESCE(display_name, name)), file`
	args := []any{pattern}
	if limit > 0 {
		query += " LIMIT ?2"
		args = append(args, limit)
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.File, &r.Name, &r.DisplayName, &r.Description, &r.Category, &r.AI, &r.PropertyCount); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of indexed nodes per category.
func (ix *Index) Count(ctx context.Context) (map[string]int, error) {
	rows, err := ix.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM nodes GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[cat] = n
	}
	return out, rows.Err()
}

// Get returns the full record stored for a node name.
func (ix *Index) Get(ctx context.Context, name string) (*nodeschema.Record, error) {
	var body string
	err := ix.db.QueryRowContext(ctx, "SELECT record FROM nodes WHERE name = ? ORDER BY file LIMIT 1", name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	var rec nodeschema.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &rec, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
