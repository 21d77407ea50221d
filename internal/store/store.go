// Package store keeps a SQLite history of crawl runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/v0xg/formmap/internal/form"
)

// FileName is the database file created inside the store directory
const FileName = "formmap.db"

// timeLayout is fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run id is not in the history
var ErrNotFound = errors.New("run not found")

// Store is the run history database
type Store struct {
	db   *sql.DB
	path string
}

// Run summarizes one stored crawl
type Run struct {
	ID        string
	SourceURL string
	Pages     int
	Elements  int
	Timestamp time.Time
}

// Open opens or creates the history database in dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	path := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL,
		pages INTEGER NOT NULL,
		elements INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		catalog_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	CREATE TABLE IF NOT EXISTS elements (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		element_id TEXT NOT NULL,
		label TEXT NOT NULL,
		category TEXT NOT NULL,
		required INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_elements_element_id ON elements(element_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save records the catalog as a new run and returns its id. A catalog
// without a run id is assigned one.
func (s *Store) Save(ctx context.Context, c *form.Catalog) (string, error) {
	if c.Metadata.RunID == "" {
		c.Metadata.RunID = uuid.NewString()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to serialize catalog: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	meta := c.Metadata
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source_url, pages, elements, timestamp, catalog_json) VALUES (?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.SourceURL, meta.PagesVisited, meta.TotalElements, meta.Timestamp.UTC().Format(timeLayout), string(data))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO elements (run_id, position, element_id, label, category, required) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare element insert: %w", err)
	}
	defer stmt.Close()
	for i, el := range c.Elements {
		if _, err := stmt.ExecContext(ctx, meta.RunID, i, el.ID, el.Label, string(el.Category), el.Required); err != nil {
			return "", fmt.Errorf("failed to insert element %s: %w", el.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return meta.RunID, nil
}

// Runs lists stored runs, newest first. A limit of zero or less lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_url, pages, elements, timestamp FROM runs ORDER BY timestamp DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts string
		if err := rows.Scan(&r.ID, &r.SourceURL, &r.Pages, &r.Elements, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Timestamp, _ = time.Parse(timeLayout, ts)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Catalog loads the catalog stored for a run
func (s *Store) Catalog(ctx context.Context, id string) (*form.Catalog, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT catalog_json FROM runs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var c form.Catalog
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &c, nil
}

// Seen returns the ids of runs that recorded an element with the given id
func (s *Store) Seen(ctx context.Context, elementID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.run_id FROM elements e JOIN runs r ON r.id = e.run_id
		 WHERE e.element_id = ? ORDER BY r.timestamp DESC`, elementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
