package db

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect isolates the SQL differences between the supported databases.
type Dialect interface {
	// Name is the store.driver value selecting this dialect.
	Name() string
	// DriverName is passed to sql.Open.
	DriverName() string
	DSN(cfg DialectConfig) string
	// RewriteQuery converts ? placeholders where the driver needs another syntax.
	RewriteQuery(query string) string
	ConfigureConnection(db *sql.DB) error
	// MigrationsSubdir names the embedded migrations folder.
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string
	// UpsertMoodQuery inserts a mood row or replaces the row for the same user and day.
	UpsertMoodQuery() string
}

// DialectConfig holds connection settings; Path is used by sqlite, URL by server databases.
type DialectConfig struct {
	Path string
	URL  string
}

// DialectFor maps a store.driver value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", driver)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// Queries in this package never carry a literal ? inside quotes.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

const upsertMoodOnConflict = `INSERT INTO mood_entries (user_id, day, mood, stress_percent, energy_percent, sleep_hours, updated_at)
      VALUES (?, ?, ?, ?, ?, ?, ?)
      ON CONFLICT(user_id, day) DO UPDATE SET
        mood = excluded.mood,
        stress_percent = excluded.stress_percent,
        energy_percent = excluded.energy_percent,
        sleep_hours = excluded.sleep_hours,
        updated_at = excluded.updated_at`
