package secrets

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// excludedBasenames are glob patterns over the file basename for files
// that must never be scanned-and-persisted at all. This is a path-level
// veto, checked before any content scanning happens.
var excludedBasenames = []string{
	".env*",
	"*.pem",
	"*.key",
	"credentials*",
	"id_rsa*",
	"id_dsa*",
	"id_ecdsa*",
	"id_ed25519*",
}

// excludedDirs are directory names whose contents are always vetoed.
var excludedDirs = []string{
	"secrets",
	".ssh",
}

// ShouldExclude reports whether a path must never be processed,
// independent of what its content scans as.
func ShouldExclude(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")

	base := filepath.Base(normalized)
	for _, pattern := range excludedBasenames {
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	for _, segment := range strings.Split(normalized, "/") {
		for _, dir := range excludedDirs {
			if segment == dir {
				return true
			}
		}
	}

	return false
}
