package patch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/warden/internal/policy"
)

func permissiveEngine() *Engine {
	return NewEngine(policy.NewGate(&policy.Config{PathAllowlist: []string{"**"}}))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDiff(t *testing.T) {
	engine := permissiveEngine()

	d := engine.Diff("test.txt", "Hello\nWorld\n", "Hello\nUniverse\n")
	assert.True(t, d.HasChanges)
	assert.Contains(t, d.UnifiedPatch, "-World")
	assert.Contains(t, d.UnifiedPatch, "+Universe")
	assert.Contains(t, d.UnifiedPatch, "@@")

	same := engine.Diff("test.txt", "Hello\n", "Hello\n")
	assert.False(t, same.HasChanges)
	assert.Empty(t, same.UnifiedPatch)
}

func TestDiffFromDisk(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()

	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "Hello\nWorld\n")

	d, err := engine.DiffFromDisk(path, "Hello\nUniverse\n")
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld\n", d.OldContent)
	assert.True(t, d.HasChanges)

	// A missing file diffs against empty content: file creation.
	created, err := engine.DiffFromDisk(filepath.Join(dir, "new.txt"), "fresh\n")
	require.NoError(t, err)
	assert.Equal(t, "", created.OldContent)
	assert.True(t, created.HasChanges)
}

func TestApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{name: "replace line", old: "Hello\nWorld\n", new: "Hello\nUniverse\n"},
		{name: "append lines", old: "one\n", new: "one\ntwo\nthree\n"},
		{name: "delete lines", old: "a\nb\nc\nd\n", new: "a\nd\n"},
		{name: "create file", old: "", new: "content\n"},
		{name: "truncate file", old: "content\n", new: ""},
		{name: "no trailing newline", old: "a\nb", new: "a\nc"},
		{name: "larger file", old: strings.Repeat("keep\n", 50) + "x\n" + strings.Repeat("tail\n", 50), new: strings.Repeat("keep\n", 50) + "y\n" + strings.Repeat("tail\n", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			engine := permissiveEngine()
			path := filepath.Join(dir, "test.txt")
			if tt.old != "" {
				writeFile(t, path, tt.old)
			}

			d := engine.Diff(path, tt.old, tt.new)
			result := engine.Apply(d, Options{})
			require.NoError(t, result.Err)
			require.True(t, result.Success)
			assert.Equal(t, tt.new, readFile(t, path))

			// Re-diffing after apply shows no remaining changes.
			after, err := engine.DiffFromDisk(path, tt.new)
			require.NoError(t, err)
			assert.False(t, after.HasChanges)
		})
	}
}

func TestApplyDenied(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(policy.NewGate(&policy.Config{})) // empty allowlist denies writes
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "original\n")

	d := engine.Diff(path, "original\n", "mutated\n")
	result := engine.Apply(d, Options{Backup: true})

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.True(t, policy.IsDenied(result.Err))

	// No disk touched on denial.
	assert.Equal(t, "original\n", readFile(t, path))
	assert.NoFileExists(t, path+BackupSuffix)
}

func TestApplyNoChangesIsNoOp(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "same\n")

	d := engine.Diff(path, "same\n", "same\n")
	result := engine.Apply(d, Options{Backup: true})

	assert.True(t, result.Success)
	assert.Empty(t, result.BackupPath)
	assert.NoFileExists(t, path+BackupSuffix)
}

func TestApplyWithBackup(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "Hello\nWorld\n")

	d, err := engine.DiffFromDisk(path, "Hello\nUniverse\n")
	require.NoError(t, err)

	result := engine.Apply(d, Options{Backup: true})
	require.True(t, result.Success)
	require.Equal(t, path+BackupSuffix, result.BackupPath)

	assert.Equal(t, "Hello\nUniverse\n", readFile(t, path))
	// Backup holds the pre-mutation content and persists after success.
	assert.Equal(t, "Hello\nWorld\n", readFile(t, result.BackupPath))
}

func TestApplyDryRunNeverMutates(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "Hello\nWorld\n")

	d := engine.Diff(path, "Hello\nWorld\n", "Hello\nUniverse\n")

	result := engine.Apply(d, Options{DryRun: true})
	assert.True(t, result.Success)
	assert.Equal(t, "Hello\nWorld\n", readFile(t, path))
	assert.NoFileExists(t, path+BackupSuffix)

	// Dry run against externally modified content reports the conflict
	// without mutating either.
	writeFile(t, path, "completely different\n")
	result = engine.Apply(d, Options{DryRun: true})
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrConflict)
	assert.Equal(t, "completely different\n", readFile(t, path))
}

func TestApplyConflictFailsClosed(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()
	path := filepath.Join(dir, "test.txt")

	// Diff computed against one version, disk changed to another.
	d := engine.Diff(path, "line1\nline2\nline3\n", "line1\nCHANGED\nline3\n")
	writeFile(t, path, "totally\nunrelated\ncontent\nnow\n")

	result := engine.Apply(d, Options{Backup: true})
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrConflict)

	// Original content is preserved and the backup remains as evidence.
	assert.Equal(t, "totally\nunrelated\ncontent\nnow\n", readFile(t, path))
	assert.Equal(t, "totally\nunrelated\ncontent\nnow\n", readFile(t, path+BackupSuffix))
}

func TestApplyAgainstDriftedContentWithIntactContext(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()
	path := filepath.Join(dir, "test.txt")

	old := "alpha\nbeta\ngamma\ndelta\n"
	d := engine.Diff(path, old, "alpha\nbeta\nGAMMA\ndelta\n")

	// External edit far from the hunk: lines appended after the context
	// window do not invalidate the patch.
	writeFile(t, path, old+"extra\n")

	result := engine.Apply(d, Options{})
	require.NoError(t, result.Err)
	assert.Equal(t, "alpha\nbeta\nGAMMA\ndelta\nextra\n", readFile(t, path))
}

func TestApplyCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()
	path := filepath.Join(dir, "deep", "nested", "file.txt")

	d := engine.Diff(path, "", "hello\n")
	result := engine.Apply(d, Options{})
	require.True(t, result.Success)
	assert.Equal(t, "hello\n", readFile(t, path))
}

func TestApplyAll(t *testing.T) {
	dir := t.TempDir()
	engine := permissiveEngine()

	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	pathC := filepath.Join(dir, "c.txt")
	writeFile(t, pathB, "drifted away\n")

	diffs := []*Diff{
		engine.Diff(pathA, "", "a\n"),
		engine.Diff(pathB, "expected\n", "changed\n"), // will conflict
		engine.Diff(pathC, "", "c\n"),
	}

	results := engine.ApplyAll(diffs, Options{})
	require.Len(t, results, 2) // stops at first failure
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NoFileExists(t, pathC)

	// Dry run attempts everything and reports the full picture.
	dryResults := engine.ApplyAll(diffs, Options{DryRun: true})
	require.Len(t, dryResults, 3)
	assert.True(t, dryResults[0].Success)
	assert.False(t, dryResults[1].Success)
	assert.True(t, dryResults[2].Success)
}

func TestPreview(t *testing.T) {
	engine := permissiveEngine()

	d := engine.Diff("test.txt", "Hello\nWorld\n", "Hello\nUniverse\n")
	lines := Preview(d)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "+1 -1")

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "-World")
	assert.Contains(t, joined, "+Universe")

	unchanged := engine.Diff("test.txt", "x\n", "x\n")
	lines = Preview(unchanged)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "no changes")
}

func TestApplyUnified(t *testing.T) {
	engine := permissiveEngine()

	t.Run("clean replay on identical content", func(t *testing.T) {
		d := engine.Diff("f", "a\nb\nc\n", "a\nB\nc\n")
		got, err := applyUnified("a\nb\nc\n", d.UnifiedPatch)
		require.NoError(t, err)
		assert.Equal(t, "a\nB\nc\n", got)
	})

	t.Run("context mismatch conflicts", func(t *testing.T) {
		d := engine.Diff("f", "a\nb\nc\n", "a\nB\nc\n")
		_, err := applyUnified("a\nX\nc\n", d.UnifiedPatch)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("malformed patch conflicts", func(t *testing.T) {
		_, err := applyUnified("a\n", "this is not a patch\n")
		assert.ErrorIs(t, err, ErrConflict)
	})
}
