package domain

import "time"

// ResultKind classifies the outcome of a single executor call.
type ResultKind string

const (
	ResultOK            ResultKind = "ok"
	ResultInvalidTarget ResultKind = "invalid_target"
	ResultBuildFailed   ResultKind = "build_failed"
	ResultBlocked       ResultKind = "blocked"
	ResultDeclined      ResultKind = "declined"
	ResultExitFailure   ResultKind = "exit_failure"
	ResultLaunchFailure ResultKind = "launch_failure"
	ResultTimeout       ResultKind = "timeout"
	ResultInterrupted   ResultKind = "interrupted"
)

// ExecutionResult is produced per executor call and only kept in memory,
// apart from the condensed history line and audit row.
type ExecutionResult struct {
	Success    bool
	Kind       ResultKind
	Tool       string
	Argv       []string
	Command    string // display form of Argv, never executed
	Output     string
	Error      string
	DryRun     bool
	ReturnCode int
	Duration   time.Duration
	Truncated  bool
}
