package shared

// Global flag values shared across commands. Registered once on the
// root command and read through accessors.
var (
	verbose   bool
	jsonOut   bool
	assumeYes bool
	workspace string
)

// RegisterFlagPointers returns pointers for the root command to bind
// its persistent flags to.
func RegisterFlagPointers() (verbosePtr, jsonPtr, yesPtr *bool, workspacePtr *string) {
	return &verbose, &jsonOut, &assumeYes, &workspace
}

// Verbose reports whether verbose output was requested.
func Verbose() bool { return verbose }

// JSON reports whether JSON output was requested.
func JSON() bool { return jsonOut }

// AssumeYes reports whether confirmation prompts are auto-approved.
func AssumeYes() bool { return assumeYes }

// Workspace returns the workspace root ("." when unset).
func Workspace() string {
	if workspace == "" {
		return "."
	}
	return workspace
}
