package history

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lume/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 5, 9, 0, time.Local)
	got := Format(domain.HistoryEntry{
		Timestamp: ts,
		Command:   "nmap -sV -T4 10.0.0.1",
		Target:    "10.0.0.1",
		Summary:   "Performed a service and version scan on the target",
	})
	want := "[2026-03-01 14:05:09] Command: nmap -sV -T4 10.0.0.1\n" +
		"            Target: 10.0.0.1\n" +
		"            Summary: Performed a service and version scan on the target\n\n"
	if got != want {
		t.Fatalf("unexpected block:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormat_NoTargetAndNormalization(t *testing.T) {
	got := Format(domain.HistoryEntry{
		Timestamp: time.Now(),
		Command:   "nikto -h http://a.com",
		Summary:   "s",
		Normalization: &domain.NormalizationMeta{
			Used: true, Confidence: 0.8734, OriginalInput: "could you check\nhttp://a.com", Intent: "web_vuln_scan",
		},
	})
	if strings.Contains(got, "Target:") {
		t.Fatal("target line must be omitted when empty")
	}
	for _, want := range []string{"Normalized: yes (confidence: 0.87)", "Original Input: could you check http://a.com", "Intent: web_vuln_scan"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.log")
	l := New(path, testLogger())
	l.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))

	l.Append(domain.HistoryEntry{Command: "nmap -F -T4 10.0.0.1", Target: "10.0.0.1", Summary: "fast"})
	l.Append(domain.HistoryEntry{Command: "whatweb a.com", Summary: "tech",
		Normalization: &domain.NormalizationMeta{Used: true, Confidence: 0.9, OriginalInput: "what runs a.com"}})
	l.Append(domain.HistoryEntry{Command: "nikto -h http://a.com", Target: "http://a.com", Summary: "vuln"})

	all, err := l.Read(0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].Command != "nmap -F -T4 10.0.0.1" || all[0].Target != "10.0.0.1" || all[0].Summary != "fast" {
		t.Fatalf("unexpected first entry %+v", all[0])
	}
	if !all[0].Timestamp.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)) {
		t.Fatalf("unexpected timestamp %v", all[0].Timestamp)
	}
	n := all[1].Normalization
	if n == nil || n.Confidence != 0.9 || n.OriginalInput != "what runs a.com" {
		t.Fatalf("normalization metadata lost: %+v", n)
	}

	last, err := l.Read(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 2 || last[1].Command != "nikto -h http://a.com" {
		t.Fatalf("expected the last two entries, got %+v", last)
	}
}

func TestRead_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()
	got, err := New(filepath.Join(dir, "none.log"), testLogger()).Read(10)
	if err != nil || len(got) != 0 {
		t.Fatalf("missing file: expected no entries and no error, got %v, %v", got, err)
	}

	empty := filepath.Join(dir, "empty.log")
	os.WriteFile(empty, nil, 0o600)
	got, err = New(empty, testLogger()).Read(10)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty file: expected no entries and no error, got %v, %v", got, err)
	}
}

func TestAppend_FailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	// The parent "directory" is a regular file, so every write fails.
	l := New(filepath.Join(blocker, "history.log"), testLogger())
	l.Append(domain.HistoryEntry{Command: "x", Summary: "y"})
}

func TestParse_SkipsGarbage(t *testing.T) {
	text := "garbage line\n\n[2026-01-01 00:00:00] Command: whatweb a.com\n            Summary: s\n\n"
	got := Parse(text)
	if len(got) != 1 || got[0].Command != "whatweb a.com" {
		t.Fatalf("unexpected parse %+v", got)
	}
}
