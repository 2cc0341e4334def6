// Package sqlite serves documents from a single-file SQLite database, for
// workstations and demos where running PostgreSQL is overkill.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"dicomviewer/internal/storage"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "dicom_documents"

const schema = `
CREATE TABLE IF NOT EXISTS %s (
	container  TEXT NOT NULL,
	object_key TEXT NOT NULL,
	body       BLOB NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')),
	PRIMARY KEY (container, object_key)
)`

// Open opens (creating if needed) the database at path and ensures the
// document table exists.
func Open(ctx context.Context, path, table string) (*sql.DB, error) {
	if table == "" {
		table = DefaultTable
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; readers share the connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schema, quoteIdent(table))); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return db, nil
}

// Fetcher reads documents keyed by (container, object_key).
type Fetcher struct {
	db       *sql.DB
	table    string
	query    string
	insert   string
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBytes rejects documents larger than n bytes without transferring
// their body. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithTable reads from a table other than DefaultTable.
func WithTable(name string) Option {
	return func(f *Fetcher) {
		if name != "" {
			f.table = name
		}
	}
}

func New(db *sql.DB, opts ...Option) *Fetcher {
	f := &Fetcher{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt(f)
	}
	t := quoteIdent(f.table)
	f.query = fmt.Sprintf(`SELECT length(body),
		CASE WHEN ?3 > 0 AND length(body) > ?3 THEN NULL ELSE body END
		FROM %s WHERE container = ?1 AND object_key = ?2`, t)
	f.insert = fmt.Sprintf(`INSERT INTO %s (container, object_key, body) VALUES (?, ?, ?)
		ON CONFLICT (container, object_key) DO UPDATE SET body = excluded.body`, t)
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, loc storage.Location) ([]byte, error) {
	var (
		size int64
		body []byte
	)
	err := f.db.QueryRowContext(ctx, f.query, loc.Container, loc.Key, f.maxBytes).Scan(&size, &body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", loc, storage.ErrNotFound)
		}
		return nil, storage.Unavailable("sqlite", err)
	}
	if f.maxBytes > 0 && size > f.maxBytes {
		return nil, storage.Unavailable("sqlite", fmt.Errorf("document %s is %d bytes, limit %d", loc, size, f.maxBytes))
	}
	return body, nil
}

// Put stores or replaces a document.
func (f *Fetcher) Put(ctx context.Context, loc storage.Location, body []byte) error {
	if _, err := f.db.ExecContext(ctx, f.insert, loc.Container, loc.Key, body); err != nil {
		return fmt.Errorf("put document %s: %w", loc, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
