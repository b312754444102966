package policy

import (
	"errors"
	"fmt"
	"strings"
)

// DeniedError represents a policy denial. It carries enough context for
// the caller to explain the denial without revealing whether the denied
// resource exists.
type DeniedError struct {
	// Risk is the risk level that was evaluated.
	Risk RiskLevel

	// Resource is the path or command that was denied.
	Resource string

	// Allowed is the list of allowed patterns, if relevant.
	Allowed []string

	// Reason provides additional context.
	Reason string
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	parts := []string{fmt.Sprintf("policy denied: %s", e.Risk)}
	if e.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource: %s", e.Resource))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.Allowed) > 0 {
		parts = append(parts, fmt.Sprintf("allowed patterns: [%s]", strings.Join(e.Allowed, ", ")))
	}
	return strings.Join(parts, "; ")
}

// IsDenied reports whether err is a policy denial.
func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}
