// Package sqlite implements the repository interfaces on top of a single
// SQLite database file.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so the
// binary cross-compiles without a C toolchain. The blank import below
// registers it with database/sql under the driver name "sqlite".
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and carries every repository implementation as
// methods. One struct for all entities keeps the wiring in server.New down to
// a single value that satisfies five interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and brings the schema up to
// date. Use ":memory:" in tests for a throwaway database.
//
// The pragmas ride in the DSN so the driver applies them to every connection
// the pool opens. Running PRAGMA statements with Exec after Open would
// configure only the one pooled connection they happen to land on, and a
// fresh connection with foreign_keys off would turn the cascade chain
// (categories → products → product_images/comments) into a no-op.
func New(dbPath string) (*DB, error) {
	// WAL lets readers proceed while a write is in flight: the storefront
	// keeps listing while the admin saves a product.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every in-memory connection is a separate empty database. A single
		// connection keeps the whole pool on the one that was migrated.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent,
// so it is safe on every start.
//
// Cascades delete rows only. Image files on disk are cleaned up by the image
// set manager before the owning row is deleted; the row cascade is the
// backstop that guarantees no dangling references survive.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       REAL NOT NULL CHECK (price >= 0),
			stock       INTEGER NOT NULL CHECK (stock >= 0),
			category_id TEXT REFERENCES categories(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);

		CREATE TABLE IF NOT EXISTS product_images (
			id         TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			image_url  TEXT NOT NULL,
			is_primary INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON product_images(product_id);

		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'guest' CHECK (role IN ('admin', 'guest')),
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		-- Legacy accounts have no email; uniqueness applies only to real ones.
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email) WHERE email <> '';

		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			username   TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_product_id ON comments(product_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error. Every
// multi-statement mutation in this package goes through it so that a failure
// partway leaves no partial database state behind.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
