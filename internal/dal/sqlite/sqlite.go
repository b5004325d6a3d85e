package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Client represents a SQLite client over database/sql.
type Client struct {
	db *sql.DB
}

// DB returns the underlying database handle.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database handle for graceful shutdown.
func (c *Client) Close() error {
	return c.db.Close()
}

// Open opens (or creates) the SQLite database at path and applies
// migrations. WAL plus a busy timeout lets concurrent request handlers
// share the single writer without "database is locked" failures. The
// modernc driver only honors pragmas in _pragma=name(value) form, and it
// applies them per connection, so they belong in the DSN rather than in a
// one-off Exec against the pool.
func Open(path string) (*Client, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Client{db: db}, nil
}

// MustOpen is Open that panics on failure, for the composition root.
func MustOpen(path string) *Client {
	c, err := Open(path)
	if err != nil {
		panic(err)
	}

	return c
}
