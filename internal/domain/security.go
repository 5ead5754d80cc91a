package domain

import "context"

type SecurityAction string

const (
	ActionAllow   SecurityAction = "allow"
	ActionBlock   SecurityAction = "block"
	ActionConfirm SecurityAction = "confirm"
)

// SecurityEngine evaluates built commands against scope and blacklist/whitelist/confirm policies.
type SecurityEngine interface {
	Check(ctx context.Context, toolName string, target Target, argv []string) (SecurityAction, error)
	RequestConfirmation(ctx context.Context, toolName string, command string) (bool, error)
}

type AuditEntry struct {
	RunID    string
	Action   string // command_allowed | command_blocked | confirm_yes | confirm_no
	ToolName string
	Command  string
	Result   string // allowed | blocked | confirmed | denied
	Details  string
}

type runIDKey struct{}

// WithRunID tags ctx with the identifier of the current instruction run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run identifier stored by WithRunID, or "".
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
