package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgRows is the subset of pgx.Rows the store reads.
type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// pgConn is the minimal database interface required by Store. A
// *pgxpool.Pool is adapted by poolConn; tests supply a mock.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (pgRows, error)
}

// Store is a PostgreSQL-backed Log over the conversion_log table.
type Store struct {
	db pgConn
}

// NewStore creates a store directly from a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: &poolConn{pool: pool}}
}

func newStore(db pgConn) *Store {
	return &Store{db: db}
}

// Record implements Log.
func (s *Store) Record(ctx context.Context, e Entry) error {
	const query = `INSERT INTO conversion_log
    (id, request_id, source, format, sheet_count, row_count, byte_size, sha256, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if err := s.db.Exec(ctx, query, e.ID, e.RequestID, e.Source, e.Format,
		e.Sheets, e.Rows, e.Bytes, e.SHA256, e.Error, e.CreatedAt); err != nil {
		return fmt.Errorf("audit: record conversion: %w", err)
	}
	return nil
}

// Recent implements Log. Entries are returned newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const query = `SELECT id, request_id, source, format, sheet_count, row_count,
       byte_size, sha256, error, created_at
FROM conversion_log
ORDER BY created_at DESC
LIMIT $1`

	rows, err := s.db.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit: list conversions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Source, &e.Format,
			&e.Sheets, &e.Rows, &e.Bytes, &e.SHA256, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan conversion: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: list conversions: %w", err)
	}
	return out, nil
}

// poolConn adapts *pgxpool.Pool to pgConn. Exec drops the command tag and
// Query narrows pgx.Rows to pgRows.
type poolConn struct {
	pool *pgxpool.Pool
}

func (p *poolConn) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

func (p *poolConn) Query(ctx context.Context, sql string, args ...any) (pgRows, error) {
	return p.pool.Query(ctx, sql, args...)
}
