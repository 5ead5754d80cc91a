package domain

import "time"

// ExecutionRecord is the audit-store row for one instruction run.
type ExecutionRecord struct {
	ID          int64
	RunID       string
	Instruction string
	Stage       string
	Tool        string
	Confidence  int
	Target      string
	Command     string
	Kind        ResultKind
	DryRun      bool
	ReturnCode  int
	Duration    time.Duration
	Error       string
	CreatedAt   time.Time
}
