// Package sqlstore implements ports.Store on SQLite (mattn/go-sqlite3) or PostgreSQL (lib/pq).
//
// Both record kinds share one table keyed by (kind, key).
package sqlstore

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported database.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Connection pool settings for Postgres.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

// DB is an open, migrated database.
type DB struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to dsn and applies migrations.
// For SQLite the DSN is a file path; its directory is created if missing.
func Open(dialect Dialect, dsn string, logger *slog.Logger) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		driver     string
		migrations string
	)
	switch dialect {
	case SQLite:
		driver, migrations = "sqlite3", sqliteMigrations
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case Postgres:
		driver, migrations = "postgres", postgresMigrations
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	logger.Debug("Opening database connection", "dialect", dialect)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	if dialect == Postgres {
		db.SetMaxOpenConns(DefaultMaxOpenConns)
		db.SetMaxIdleConns(DefaultMaxIdleConns)
		db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	} else {
		// A single writer avoids "database is locked" under concurrent turns.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping failed: %w", dialect, err)
	}

	if _, err := db.Exec(migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Debug("Database migrations applied", "dialect", dialect)

	return &DB{db: db, dialect: dialect, logger: logger}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Dialect returns the database flavor.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}
	var (
		sb strings.Builder
		n  int
	)
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
