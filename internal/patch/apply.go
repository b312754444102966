package patch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/warden-dev/warden/internal/policy"
)

// BackupSuffix is appended to the target path to form its backup
// sibling. Backups are left on disk after a successful apply so a human
// can diff against them.
const BackupSuffix = ".backup"

// Options controls how a Diff is applied.
type Options struct {
	// Backup copies the target to a sibling backup path before mutating.
	Backup bool

	// DryRun validates that the patch still applies cleanly against the
	// current on-disk content without writing anything.
	DryRun bool
}

// ApplyResult is the outcome of applying one Diff.
type ApplyResult struct {
	Success    bool
	FilePath   string
	BackupPath string
	Err        error
}

// Apply commits a Diff to disk. The gate is consulted first; a denial
// returns immediately with no disk touched. Applying a Diff with no
// changes is an idempotent no-op.
func (e *Engine) Apply(d *Diff, opts Options) ApplyResult {
	result := ApplyResult{FilePath: d.FilePath}

	decision := e.gate.Evaluate(policy.Action{
		Name:  "patch.apply",
		Risk:  policy.RiskWrite,
		Scope: []string{d.FilePath},
	}, nil)
	if !decision.Allowed {
		result.Err = &policy.DeniedError{
			Risk:     policy.RiskWrite,
			Resource: d.FilePath,
			Reason:   decision.Reason,
		}
		return result
	}

	if !d.HasChanges {
		result.Success = true
		return result
	}

	current, exists, mode, err := readCurrent(d.FilePath)
	if err != nil {
		result.Err = err
		return result
	}

	if opts.DryRun {
		// Resolve purely in memory; this guards against concurrent
		// external edits having invalidated the patch.
		if _, err := e.resolve(d, current); err != nil {
			result.Err = err
		} else {
			result.Success = true
		}
		return result
	}

	if opts.Backup && exists {
		backupPath := d.FilePath + BackupSuffix
		if err := os.WriteFile(backupPath, []byte(current), mode); err != nil {
			result.Err = fmt.Errorf("create backup: %w", err)
			return result
		}
		result.BackupPath = backupPath
	}

	patched, err := e.resolve(d, current)
	if err != nil {
		// Fail closed: nothing was written, the backup stays on disk as
		// recoverable evidence.
		result.Err = err
		return result
	}

	if dir := filepath.Dir(d.FilePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			result.Err = fmt.Errorf("create parent directory: %w", err)
			return result
		}
	}

	if err := os.WriteFile(d.FilePath, []byte(patched), mode); err != nil {
		if result.BackupPath != "" {
			// Best-effort restore of the original content.
			_ = os.WriteFile(d.FilePath, []byte(current), mode)
		}
		result.Err = fmt.Errorf("write %s: %w", d.FilePath, err)
		return result
	}

	result.Success = true
	return result
}

// ApplyAll applies diffs in caller-supplied order, stopping at the
// first failure. In dry-run mode all diffs are attempted regardless so
// the caller gets a full conflict report.
func (e *Engine) ApplyAll(diffs []*Diff, opts Options) []ApplyResult {
	results := make([]ApplyResult, 0, len(diffs))
	for _, d := range diffs {
		result := e.Apply(d, opts)
		results = append(results, result)
		if !result.Success && !opts.DryRun {
			break
		}
	}
	return results
}

// resolve computes the post-patch content for the current on-disk
// content. When the file is unchanged since the diff was computed the
// new content is used directly; otherwise the unified patch is replayed
// against the current content with full context checking.
func (e *Engine) resolve(d *Diff, current string) (string, error) {
	if current == d.OldContent {
		return d.NewContent, nil
	}
	if current == d.NewContent {
		// Already applied.
		return d.NewContent, nil
	}
	return applyUnified(current, d.UnifiedPatch)
}

func readCurrent(path string) (content string, exists bool, mode fs.FileMode, err error) {
	mode = 0o644
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return "", false, mode, nil
		}
		return "", false, mode, fmt.Errorf("stat %s: %w", path, statErr)
	}
	mode = info.Mode().Perm()

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", true, mode, fmt.Errorf("read %s: %w", path, readErr)
	}
	return string(data), true, mode, nil
}
