// Package store keeps the execution and security audit trail in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lume/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore records executions and security decisions.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) RecordExecution(ctx context.Context, rec domain.ExecutionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (run_id, instruction, stage, tool, confidence, target, command,
		                         outcome, dry_run, return_code, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Instruction, rec.Stage, rec.Tool, rec.Confidence, rec.Target, rec.Command,
		string(rec.Kind), rec.DryRun, rec.ReturnCode, rec.Duration.Milliseconds(), rec.Error, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// RecentExecutions returns the newest executions first.
func (s *SQLiteStore) RecentExecutions(ctx context.Context, limit int) ([]domain.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, instruction, COALESCE(stage, ''), COALESCE(tool, ''), COALESCE(confidence, 0),
		        COALESCE(target, ''), COALESCE(command, ''), outcome, dry_run, return_code, duration_ms,
		        COALESCE(error, ''), created_at
		 FROM executions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var out []domain.ExecutionRecord
	for rows.Next() {
		var r domain.ExecutionRecord
		var kind string
		var ms int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.Instruction, &r.Stage, &r.Tool, &r.Confidence,
			&r.Target, &r.Command, &kind, &r.DryRun, &r.ReturnCode, &ms, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		r.Kind = domain.ResultKind(kind)
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// LogAudit implements security.AuditLogger.
func (s *SQLiteStore) LogAudit(ctx context.Context, entry domain.AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (run_id, action, tool_name, command, result, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID, entry.Action, entry.ToolName, entry.Command, entry.Result, entry.Details, time.Now().UTC(),
	)
	return err
}

// AuditForRun returns the security decisions taken during one run, oldest first.
func (s *SQLiteStore) AuditForRun(ctx context.Context, runID string) ([]domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(run_id, ''), action, COALESCE(tool_name, ''), COALESCE(command, ''),
		        COALESCE(result, ''), COALESCE(details, '')
		 FROM audit_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.RunID, &e.Action, &e.ToolName, &e.Command, &e.Result, &e.Details); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
