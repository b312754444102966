package policy

// RiskLevel classifies an intended action by the kind of side effect it has.
// The gate dispatches purely on this value.
type RiskLevel string

const (
	// RiskRead covers operations that only read workspace content.
	RiskRead RiskLevel = "read"

	// RiskWrite covers operations that mutate files on disk.
	RiskWrite RiskLevel = "write"

	// RiskExec covers shell command execution.
	RiskExec RiskLevel = "exec"

	// RiskNetwork covers any network egress. Always denied by the
	// baseline local-first policy.
	RiskNetwork RiskLevel = "network"
)

// ContextCommand is the context key carrying the shell command for
// exec-risk actions.
const ContextCommand = "command"

// Action describes one intended operation submitted to the gate.
// An Action is immutable once built; one Action maps to exactly one
// Decision.
type Action struct {
	// Name identifies the capability being invoked (e.g. "file.write",
	// "shell.run").
	Name string

	// Risk selects the evaluation branch.
	Risk RiskLevel

	// Scope lists the paths the action touches. Empty scope is only
	// valid for read-risk actions.
	Scope []string

	// RequiresConfirmation is the caller's default; the gate ORs it
	// with the policy-wide flag.
	RequiresConfirmation bool
}
