package db

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect { return &MySQLDialect{} }

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

// DSN enables multiStatements, which migration files rely on.
func (d *MySQLDialect) DSN(cfg DialectConfig) string {
	dsn := cfg.URL
	if strings.Contains(dsn, "multiStatements=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&multiStatements=true"
	}
	return dsn + "?multiStatements=true"
}

func (d *MySQLDialect) RewriteQuery(query string) string { return query }

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	return err
}

func (d *MySQLDialect) MigrationsSubdir() string { return "mysql" }

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS schema_migrations (name VARCHAR(255) NOT NULL PRIMARY KEY, applied_at VARCHAR(40) NOT NULL)`
}

func (d *MySQLDialect) UpsertMoodQuery() string {
	return `INSERT INTO mood_entries (user_id, day, mood, stress_percent, energy_percent, sleep_hours, updated_at)
      VALUES (?, ?, ?, ?, ?, ?, ?)
      ON DUPLICATE KEY UPDATE
        mood = VALUES(mood),
        stress_percent = VALUES(stress_percent),
        energy_percent = VALUES(energy_percent),
        sleep_hours = VALUES(sleep_hours),
        updated_at = VALUES(updated_at)`
}
