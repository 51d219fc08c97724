package db

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
)

//go:embed migrations/*/*.sql
var embeddedMigrations embed.FS

type migrationFile struct {
	name string
	data []byte
}

// RunMigrations applies every .sql file not yet recorded in schema_migrations,
// in name order. Files come from migrationsDir when it exists (its dialect
// subdirectory if present), otherwise from the copies embedded in the binary.
// It returns the names it applied.
func RunMigrations(db *DB, migrationsDir string) ([]string, error) {
	files, err := loadMigrations(migrationsDir, db.Dialect.MigrationsSubdir())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied := []string{}
	for _, mf := range files {
		var seen int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, mf.name).Scan(&seen); err != nil {
			return applied, fmt.Errorf("check migration %s: %w", mf.name, err)
		}
		if seen > 0 || len(mf.data) == 0 {
			continue
		}
		if err := applyMigration(db, mf); err != nil {
			return applied, err
		}
		applied = append(applied, mf.name)
	}
	return applied, nil
}

// applyMigration runs without a transaction: mysql commits DDL implicitly.
func applyMigration(db *DB, mf migrationFile) error {
	if _, err := db.DB.Exec(string(mf.data)); err != nil {
		return fmt.Errorf("exec migration %s: %w", mf.name, err)
	}
	if _, err := db.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, mf.name, formatTime(time.Now())); err != nil {
		return fmt.Errorf("record migration %s: %w", mf.name, err)
	}
	return nil
}

func loadMigrations(dir, subdir string) ([]migrationFile, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			if info, err := os.Stat(filepath.Join(dir, subdir)); err == nil && info.IsDir() {
				dir = filepath.Join(dir, subdir)
			}
			return readMigrations(os.DirFS(dir), ".")
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}
	return readMigrations(embeddedMigrations, path.Join("migrations", subdir))
}

func readMigrations(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
