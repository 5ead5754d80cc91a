// Package history appends run summaries to a flat text log and reads them back.
//
// Each entry is a block:
//
//	[2006-01-02 15:04:05] Command: nmap -sV -T4 10.0.0.1
//	            Target: 10.0.0.1
//	            Summary: Performed a service and version scan on the target
//
// followed by a blank line. Entries are never rewritten.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lume/internal/domain"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	indent     = "            "
)

type Log struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

func New(path string, logger *slog.Logger) *Log {
	return &Log{path: path, logger: logger, now: time.Now}
}

func (l *Log) Path() string { return l.path }

// Append writes e to the log. Failures are logged and otherwise ignored.
func (l *Log) Append(e domain.HistoryEntry) {
	if err := l.append(e); err != nil {
		l.logger.Warn("history write failed", "path", l.path, "err", err)
	}
}

func (l *Log) append(e domain.HistoryEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(Format(e)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Format renders one entry block including its trailing blank line.
func Format(e domain.HistoryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Command: %s\n", e.Timestamp.Format(timeLayout), oneLine(e.Command))
	if e.Target != "" {
		fmt.Fprintf(&b, "%sTarget: %s\n", indent, oneLine(e.Target))
	}
	fmt.Fprintf(&b, "%sSummary: %s\n", indent, oneLine(e.Summary))
	if n := e.Normalization; n != nil && n.Used {
		fmt.Fprintf(&b, "%sNormalized: yes (confidence: %.2f)\n", indent, n.Confidence)
		fmt.Fprintf(&b, "%sOriginal Input: %s\n", indent, oneLine(n.OriginalInput))
		if n.Intent != "" {
			fmt.Fprintf(&b, "%sIntent: %s\n", indent, n.Intent)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Read returns the last limit entries, oldest first; limit <= 0 returns all.
// A missing or empty log is not an error.
func (l *Log) Read(limit int) ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := Parse(string(data))
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Parse splits log text into entries. Blocks it cannot read are skipped.
func Parse(text string) []domain.HistoryEntry {
	var out []domain.HistoryEntry
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if e, ok := parseBlock(block); ok {
			out = append(out, e)
		}
	}
	return out
}

func parseBlock(block string) (domain.HistoryEntry, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	head := lines[0]
	if !strings.HasPrefix(head, "[") {
		return domain.HistoryEntry{}, false
	}
	end := strings.Index(head, "]")
	if end < 0 {
		return domain.HistoryEntry{}, false
	}

	var e domain.HistoryEntry
	if ts, err := time.ParseInLocation(timeLayout, head[1:end], time.Local); err == nil {
		e.Timestamp = ts
	}
	e.Command = strings.TrimPrefix(strings.TrimSpace(head[end+1:]), "Command: ")

	for _, line := range lines[1:] {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ": ")
		if !ok {
			continue
		}
		switch key {
		case "Target":
			e.Target = val
		case "Summary":
			e.Summary = val
		case "Normalized":
			e.Normalization = &domain.NormalizationMeta{Used: true, Confidence: parseConfidence(val)}
		case "Original Input":
			if e.Normalization != nil {
				e.Normalization.OriginalInput = val
			}
		case "Intent":
			if e.Normalization != nil {
				e.Normalization.Intent = val
			}
		}
	}
	return e, true
}

func parseConfidence(s string) float64 {
	_, rest, ok := strings.Cut(s, "confidence: ")
	if !ok {
		return 0
	}
	f, _ := strconv.ParseFloat(strings.TrimSuffix(rest, ")"), 64)
	return f
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
