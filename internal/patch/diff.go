// Package patch computes textual diffs and applies them to disk with
// backup and rollback. Application is fail-closed: a patch that cannot
// be reconciled with the current file content is never partially
// committed.
package patch

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/warden-dev/warden/internal/policy"
)

// Diff represents a proposed mutation to one file. It is created purely
// from content and does not touch disk until applied.
type Diff struct {
	// FilePath is the target file, relative to the workspace root.
	FilePath string

	// OldContent is the content the diff was computed against.
	OldContent string

	// NewContent is the proposed content.
	NewContent string

	// UnifiedPatch is the unified diff text between old and new.
	UnifiedPatch string

	// HasChanges reports whether old and new differ.
	HasChanges bool
}

// Engine computes and applies diffs. Every apply runs through the
// injected gate before touching disk.
type Engine struct {
	gate *policy.Gate
}

// NewEngine creates a patch engine bound to the given gate.
func NewEngine(gate *policy.Gate) *Engine {
	return &Engine{gate: gate}
}

// Diff builds a Diff for path from explicit old and new content.
func (e *Engine) Diff(path, oldContent, newContent string) *Diff {
	unified := ""
	if oldContent != newContent {
		unified, _ = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        splitAfterLines(oldContent),
			B:        splitAfterLines(newContent),
			FromFile: "a/" + path,
			ToFile:   "b/" + path,
			Context:  3,
		})
	}

	return &Diff{
		FilePath:     path,
		OldContent:   oldContent,
		NewContent:   newContent,
		UnifiedPatch: unified,
		HasChanges:   oldContent != newContent,
	}
}

// DiffFromDisk builds a Diff against the file's current on-disk
// content. A missing file is treated as empty old content, so diffing
// against it represents file creation.
func (e *Engine) DiffFromDisk(path, newContent string) (*Diff, error) {
	current, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		current = nil
	}
	return e.Diff(path, string(current), newContent), nil
}

// Preview returns human-readable lines describing the diff's hunks,
// additions and deletions. It never touches disk.
func Preview(d *Diff) []string {
	if !d.HasChanges {
		return []string{fmt.Sprintf("%s: no changes", d.FilePath)}
	}

	var added, removed int
	var lines []string
	for _, line := range splitAfterLines(d.UnifiedPatch) {
		trimmed := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(trimmed, "---") || strings.HasPrefix(trimmed, "+++"):
			continue
		case strings.HasPrefix(trimmed, "@@"):
			lines = append(lines, trimmed)
		case strings.HasPrefix(trimmed, "+"):
			added++
			lines = append(lines, trimmed)
		case strings.HasPrefix(trimmed, "-"):
			removed++
			lines = append(lines, trimmed)
		default:
			lines = append(lines, trimmed)
		}
	}

	header := fmt.Sprintf("%s: +%d -%d", d.FilePath, added, removed)
	return append([]string{header}, lines...)
}
