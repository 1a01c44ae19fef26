package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

// productsSchema creates the product table on demand. Safe to run repeatedly.
const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
    id SERIAL PRIMARY KEY,
    payload JSONB NOT NULL
);
`

// PostgresProductSink mirrors the in-memory product list into a relational
// table. Every SaveAll call opens a fresh connection, creates the table if it
// is missing, inserts the entire list it is given, and closes the connection
// again, even when a step fails. Persistence is not transactionally linked to
// the in-memory list or the broadcast.
type PostgresProductSink struct {
	dsn string

	// open acquires the database handle for one operation chain. Swappable
	// in tests.
	open func() (*sql.DB, error)
}

// NewPostgresProductSink creates a sink that connects to the given PostgreSQL
// DSN on every save.
func NewPostgresProductSink(dsn string) *PostgresProductSink {
	return &PostgresProductSink{
		dsn:  dsn,
		open: func() (*sql.DB, error) { return sql.Open("postgres", dsn) },
	}
}

// SaveAll writes the full current product list into the relational table.
// The whole list is re-inserted on every call, so the table accumulates
// duplicates of previously saved records; this mirrors the documented
// behavior of the system being replaced and is deliberately not corrected
// here.
func (s *PostgresProductSink) SaveAll(ctx context.Context, products []json.RawMessage) error {
	db, err := s.open()
	if err != nil {
		return fmt.Errorf("open product db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := ensureTable(ctx, db); err != nil {
		return err
	}
	return insertBatch(ctx, db, products)
}

// ensureTable creates the product table if absent. Idempotent.
func ensureTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, productsSchema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// insertBatch inserts every record in the given list, in order.
func insertBatch(ctx context.Context, db *sql.DB, products []json.RawMessage) error {
	for _, p := range products {
		if _, err := db.ExecContext(
			ctx,
			`INSERT INTO products (payload) VALUES ($1)`,
			[]byte(p),
		); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
	}
	return nil
}
