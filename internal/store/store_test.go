package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lume/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "audit.db"), testLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Migrations ---

func TestRunMigrations_FreshAndIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(db, testLogger()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	v, err := GetSchemaVersion(db)
	if err != nil {
		t.Fatal(err)
	}
	if v != schemaVersion {
		t.Fatalf("expected version %d, got %d", schemaVersion, v)
	}
}

func TestRunMigrations_RecoversPartialUpgrade(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// v1 applied by hand plus one v2 column, but v2 not recorded.
	if _, err := db.Exec(migrations[0].SQL); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("ALTER TABLE executions ADD COLUMN stage TEXT"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE schema_version (version INTEGER PRIMARY KEY, description TEXT, applied_at DATETIME)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version, description) VALUES (1, 'base')"); err != nil {
		t.Fatal(err)
	}

	if err := RunMigrations(db, testLogger()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if v, _ := GetSchemaVersion(db); v != 2 {
		t.Fatalf("expected version 2, got %d", v)
	}
}

func TestSplitSQL(t *testing.T) {
	got := splitSQL("CREATE TABLE a (x INT);\n\n ; CREATE INDEX i ON a(x);  ")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" || got[1] != "CREATE INDEX i ON a(x)" {
		t.Fatalf("unexpected split %q", got)
	}
}

// --- Executions ---

func TestRecordAndListExecutions(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := domain.ExecutionRecord{
		RunID: "run-1", Instruction: "scan ports on 10.0.0.1", Stage: "fast", Tool: "nmap",
		Confidence: 100, Target: "10.0.0.1", Command: "nmap -sV -T4 10.0.0.1",
		Kind: domain.ResultOK, ReturnCode: 0, Duration: 1500 * time.Millisecond,
	}
	second := domain.ExecutionRecord{
		RunID: "run-2", Instruction: "brute force ssh on 10.0.0.5", Stage: "fast", Tool: "hydra",
		Kind: domain.ResultDeclined, ReturnCode: -1, Error: "execution cancelled by user", DryRun: true,
	}
	for _, r := range []domain.ExecutionRecord{first, second} {
		if err := s.RecordExecution(ctx, r); err != nil {
			t.Fatalf("RecordExecution: %v", err)
		}
	}

	got, err := s.RecentExecutions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentExecutions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].RunID != "run-2" || got[1].RunID != "run-1" {
		t.Fatalf("expected newest first, got %s, %s", got[0].RunID, got[1].RunID)
	}
	if got[0].Kind != domain.ResultDeclined || !got[0].DryRun || got[0].ReturnCode != -1 {
		t.Fatalf("unexpected row %+v", got[0])
	}
	if got[1].Duration != 1500*time.Millisecond || got[1].Confidence != 100 || got[1].Command != first.Command {
		t.Fatalf("unexpected row %+v", got[1])
	}
	if got[1].CreatedAt.IsZero() {
		t.Fatal("created_at should round-trip")
	}

	limited, err := s.RecentExecutions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 row with limit, got %d", len(limited))
	}
}

// --- Audit log ---

func TestAuditForRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	entries := []domain.AuditEntry{
		{RunID: "a", Action: "command_allowed", ToolName: "nmap", Command: "nmap 1.1.1.1", Result: "allowed"},
		{RunID: "b", Action: "command_blocked", ToolName: "nmap", Result: "blocked", Details: "scope"},
		{RunID: "a", Action: "confirm_yes", ToolName: "nmap", Result: "confirmed"},
	}
	for _, e := range entries {
		if err := s.LogAudit(ctx, e); err != nil {
			t.Fatalf("LogAudit: %v", err)
		}
	}

	got, err := s.AuditForRun(ctx, "a")
	if err != nil {
		t.Fatalf("AuditForRun: %v", err)
	}
	if len(got) != 2 || got[0].Action != "command_allowed" || got[1].Action != "confirm_yes" {
		t.Fatalf("unexpected audit entries %+v", got)
	}
}
