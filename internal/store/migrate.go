package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

const schemaVersion = 2

type migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations are applied in order, each exactly once.
var migrations = []migration{
	{
		Version:     1,
		Description: "base schema: executions, audit_log",
		SQL: `
		CREATE TABLE IF NOT EXISTS executions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			instruction  TEXT NOT NULL,
			tool         TEXT,
			target       TEXT,
			command      TEXT,
			outcome      TEXT NOT NULL,
			dry_run      INTEGER DEFAULT 0,
			return_code  INTEGER DEFAULT 0,
			duration_ms  INTEGER DEFAULT 0,
			error        TEXT,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_executions_time ON executions(created_at);

		CREATE TABLE IF NOT EXISTS audit_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT,
			action      TEXT NOT NULL,
			tool_name   TEXT,
			command     TEXT,
			result      TEXT,
			details     TEXT,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_log(created_at);
		`,
	},
	{
		Version:     2,
		Description: "resolution stage and confidence on executions",
		SQL: `
		ALTER TABLE executions ADD COLUMN stage TEXT;
		ALTER TABLE executions ADD COLUMN confidence INTEGER DEFAULT 0;
		CREATE INDEX IF NOT EXISTS idx_audit_run ON audit_log(run_id);
		`,
	},
}

// RunMigrations brings db up to schemaVersion. A migration whose batch fails
// is replayed statement by statement so a half-applied upgrade can finish.
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	const versionTable = `CREATE TABLE IF NOT EXISTS schema_version (
		version     INTEGER PRIMARY KEY,
		description TEXT,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(versionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	have, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Version <= have {
			continue
		}
		logger.Debug("applying migration", "version", m.Version, "description", m.Description)
		if err := applyBatch(db, m); err != nil {
			logger.Warn("migration batch failed, replaying per statement", "version", m.Version, "err", err)
			if err := applyEach(db, m, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetSchemaVersion returns the highest applied migration, 0 for a fresh database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	var tables int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables); err != nil {
		return 0, fmt.Errorf("inspect schema: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return v, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func markApplied(x execer, m migration) error {
	_, err := x.Exec("INSERT OR REPLACE INTO schema_version (version, description) VALUES (?, ?)", m.Version, m.Description)
	if err != nil {
		return fmt.Errorf("record migration v%d: %w", m.Version, err)
	}
	return nil
}

func applyBatch(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return err
	}
	if err := markApplied(tx, m); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// applyEach skips statements whose effect is already in place.
func applyEach(db *sql.DB, m migration, logger *slog.Logger) error {
	for _, stmt := range splitSQL(m.SQL) {
		_, err := db.Exec(stmt)
		switch {
		case err == nil:
		case alreadyApplied(err):
			logger.Debug("migration statement already applied", "version", m.Version, "stmt", clip(stmt, 60))
		default:
			return fmt.Errorf("migration v%d: %w\nSQL: %s", m.Version, err, clip(stmt, 200))
		}
	}
	return markApplied(db, m)
}

func alreadyApplied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

func splitSQL(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
