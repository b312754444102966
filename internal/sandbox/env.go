package sandbox

import (
	"fmt"
	"sort"
	"strings"
)

// sensitiveMarkers flag environment variable names that must not leak
// into child processes.
var sensitiveMarkers = []string{
	"SECRET",
	"PASSWORD",
	"TOKEN",
	"API_KEY",
	"PRIVATE",
}

// envSafelist names variables that are always passed through even when
// their name matches a sensitive marker.
var envSafelist = map[string]bool{
	"PATH":  true,
	"HOME":  true,
	"USER":  true,
	"SHELL": true,
	"LANG":  true,
	"PWD":   true,
	"TERM":  true,
}

// envSafePrefixes are name prefixes that are always passed through.
var envSafePrefixes = []string{
	"WARDEN_",
	"LC_",
}

// ScrubEnv builds the child environment from the inheriting process
// environment plus caller-supplied overrides, dropping any variable
// whose name contains a sensitive marker unless it is safelisted. This
// prevents credential leakage into child processes by default.
func ScrubEnv(base []string, overrides map[string]string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, kv := range base {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		merged[name] = value
	}
	for name, value := range overrides {
		merged[name] = value
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		if isSensitiveName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	env := make([]string, 0, len(names))
	for _, name := range names {
		env = append(env, fmt.Sprintf("%s=%s", name, merged[name]))
	}
	return env
}

func isSensitiveName(name string) bool {
	if envSafelist[name] {
		return false
	}
	for _, prefix := range envSafePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	upper := strings.ToUpper(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
