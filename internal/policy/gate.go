package policy

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Decision is the result of evaluating one Action. Decisions are never
// partial: scope lists are evaluated as a conjunction, so one denied
// path fails the whole action.
type Decision struct {
	// Allowed reports whether the action may proceed.
	Allowed bool

	// Reason is populated when the action is denied, or when there is
	// something informative to say about an allowed action.
	Reason string

	// RequiresConfirmation reports whether the caller must obtain user
	// confirmation before performing the action.
	RequiresConfirmation bool
}

// Gate evaluates Action descriptors against an injected Config. The
// gate is a pure evaluator with no side effects; callers are
// responsible for auditing its decisions.
type Gate struct {
	cfg *Config
}

// NewGate creates a gate bound to the given policy configuration.
// A nil config behaves like the zero Config: all writes and executions
// denied, reads allowed.
func NewGate(cfg *Config) *Gate {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Gate{cfg: cfg}
}

// Evaluate decides whether the action may proceed. The optional context
// map carries out-of-band inputs; exec-risk actions must supply the
// command under ContextCommand.
func (g *Gate) Evaluate(action Action, context map[string]string) Decision {
	switch action.Risk {
	case RiskRead:
		return g.evaluateRead(action)
	case RiskWrite:
		return g.evaluateWrite(action)
	case RiskExec:
		return g.evaluateExec(action, context)
	case RiskNetwork:
		// Hard rule, not a configurable allowlist: the local-first
		// baseline sanctions no network egress.
		return Decision{Allowed: false, Reason: "network access is not permitted"}
	default:
		return Decision{Allowed: false, Reason: fmt.Sprintf("unknown risk level %q", action.Risk)}
	}
}

func (g *Gate) evaluateRead(action Action) Decision {
	for _, path := range action.Scope {
		if pattern, ok := g.matchDenylist(path); ok {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("path %q is in denylist (pattern %q)", path, pattern),
			}
		}
	}
	return Decision{Allowed: true}
}

func (g *Gate) evaluateWrite(action Action) Decision {
	if len(action.Scope) == 0 {
		// A write must always declare what it touches.
		return Decision{Allowed: false, Reason: "write action declares no paths"}
	}
	for _, path := range action.Scope {
		if pattern, ok := g.matchDenylist(path); ok {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("path %q is in denylist (pattern %q)", path, pattern),
			}
		}
	}
	for _, path := range action.Scope {
		if !g.matchAllowlist(path) {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("path %q is not in write allowlist", path),
			}
		}
	}
	return Decision{
		Allowed:              true,
		RequiresConfirmation: g.cfg.RequireConfirmation || action.RequiresConfirmation,
	}
}

func (g *Gate) evaluateExec(action Action, context map[string]string) Decision {
	command := strings.TrimSpace(context[ContextCommand])
	if command == "" {
		return Decision{Allowed: false, Reason: "exec action carries no command"}
	}

	token := leadingToken(command)
	for _, entry := range g.cfg.ExecAllowlist {
		if strings.Contains(entry, "*") {
			if matched, err := doublestar.Match(entry, token); err == nil && matched {
				return g.allowExec(action)
			}
			continue
		}
		// Non-glob entries match the leading token exactly, or the
		// full command as a prefix ("npm test" allows "npm test -- -v").
		if entry == token || strings.HasPrefix(command, entry) {
			return g.allowExec(action)
		}
	}

	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("command %q is not in exec allowlist", command),
	}
}

func (g *Gate) allowExec(action Action) Decision {
	return Decision{
		Allowed:              true,
		RequiresConfirmation: g.cfg.RequireConfirmation || action.RequiresConfirmation,
	}
}

func (g *Gate) matchDenylist(path string) (string, bool) {
	normalized := normalizePath(path)
	for _, pattern := range g.cfg.PathDenylist {
		matched, err := doublestar.Match(normalizePath(pattern), normalized)
		if err != nil {
			// Invalid pattern - skip it
			continue
		}
		if matched {
			return pattern, true
		}
	}
	return "", false
}

func (g *Gate) matchAllowlist(path string) bool {
	normalized := normalizePath(path)
	for _, pattern := range g.cfg.PathAllowlist {
		matched, err := doublestar.Match(normalizePath(pattern), normalized)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// leadingToken returns the first whitespace-delimited word of a command.
func leadingToken(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// normalizePath normalizes a file path for consistent matching.
func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	return path
}
