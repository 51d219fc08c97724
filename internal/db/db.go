package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DB wraps a connection with its dialect; Query, QueryRow and Exec rewrite placeholders.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects using the dialect for driver. For sqlite the parent directory
// of cfg.Path is created, and ":memory:" is pinned to one connection so every
// query sees the same database.
func Open(driver string, cfg DialectConfig) (*DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if dialect.Name() == "sqlite" {
		if cfg.Path == "" {
			return nil, errors.New("sqlite path is required")
		}
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	} else if cfg.URL == "" {
		return nil, fmt.Errorf("%s url is required", dialect.Name())
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := dialect.ConfigureConnection(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}
	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// OpenSQLite is Open for the sqlite dialect.
func OpenSQLite(path string) (*DB, error) {
	return Open("sqlite", DialectConfig{Path: path})
}

func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.RewriteQuery(query), args...)
}

func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.DB.QueryRow(db.Dialect.RewriteQuery(query), args...)
}

func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.RewriteQuery(query), args...)
}
