package sandbox

import (
	"fmt"
	"strings"
)

// destructivePatterns are literal command shapes that are rejected
// outright. This is a coarse pre-check layered in front of the
// allowlist, not a replacement for it.
var destructivePatterns = []string{
	"rm -rf /",
	"rm -fr /",
	"rm -rf ~",
	"mkfs",
	"chmod -r 777",
	"chmod 777 /",
	"dd if=/dev/zero of=/dev/",
	"> /dev/sd",
	":(){",
}

// IsSafeCommand performs best-effort detection of obviously destructive
// commands. Returns an error naming the pattern when one is found.
func IsSafeCommand(command string) error {
	lower := strings.ToLower(strings.TrimSpace(command))
	for _, pattern := range destructivePatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("command contains destructive pattern %q", pattern)
		}
	}
	return nil
}
