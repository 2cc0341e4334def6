// Package postgres serves documents stored as bytea rows.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"dicomviewer/internal/storage"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "dicom_documents"

// Schema creates the default document table.
const Schema = `
CREATE TABLE IF NOT EXISTS dicom_documents (
	container  TEXT NOT NULL,
	object_key TEXT NOT NULL,
	body       BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (container, object_key)
)`

// Fetcher reads documents from a PostgreSQL table keyed by
// (container, object_key).
type Fetcher struct {
	db    *sql.DB
	query    string
	table    string
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

// New constructs a PostgreSQL-backed fetcher.
func New(db *sql.DB, opts ...Option) *Fetcher {
	f := &Fetcher{db: db, table: DefaultTable}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.query = fmt.Sprintf(`
		SELECT octet_length(body),
			CASE WHEN $3::bigint > 0 AND octet_length(body) > $3::bigint THEN NULL ELSE body END
		FROM %s WHERE container = $1 AND object_key = $2`, pq.QuoteIdentifier(f.table))
	return f
}

// Fetch returns the body stored for loc.
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
		return nil, storage.Unavailable("postgres", describe(err))
	}
	if f.maxBytes > 0 && size > f.maxBytes {
		return nil, storage.Unavailable("postgres", fmt.Errorf("document %s is %d bytes, limit %d", loc, size, f.maxBytes))
	}
	return body, nil
}

// Put stores or replaces a document. It is used by seeding tools and tests.
func (f *Fetcher) Put(ctx context.Context, loc storage.Location, body []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (container, object_key, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (container, object_key) DO UPDATE SET
			body = EXCLUDED.body
	`, pq.QuoteIdentifier(f.table))
	if _, err := f.db.ExecContext(ctx, query, loc.Container, loc.Key, body); err != nil {
		return fmt.Errorf("put document %s: %w", loc, describe(err))
	}
	return nil
}

// describe adds the SQLSTATE class name to server-side errors.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (%s): %w", pqErr.Code.Class().Name(), pqErr.Code, err)
	}
	return err
}
