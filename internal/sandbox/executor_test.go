package sandbox

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/warden/internal/policy"
)

func permissiveExecutor() *Executor {
	return NewExecutor(policy.NewGate(&policy.Config{ExecAllowlist: []string{"*"}}))
}

func TestExecuteSuccess(t *testing.T) {
	result := permissiveExecutor().Execute(context.Background(), "echo hello", Options{})

	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.Equal(t, "echo hello", result.Command)
}

func TestExecuteNonZeroExit(t *testing.T) {
	result := permissiveExecutor().Execute(context.Background(), "exit 3", Options{})

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "exited with code 3")
}

func TestExecuteDeniedSpawnsNothing(t *testing.T) {
	dir := t.TempDir()
	executor := NewExecutor(policy.NewGate(&policy.Config{ExecAllowlist: []string{"npm test"}}))

	result := executor.Execute(context.Background(), "touch "+dir+"/marker", Options{})

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.True(t, policy.IsDenied(result.Err))
	assert.NoFileExists(t, dir+"/marker")
}

func TestExecuteTimeout(t *testing.T) {
	start := time.Now()
	result := permissiveExecutor().Execute(context.Background(), "sleep 10", Options{
		Timeout: 200 * time.Millisecond,
	})

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecuteWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	result := permissiveExecutor().Execute(context.Background(), "pwd", Options{Dir: dir})

	require.True(t, result.Success)
	assert.Contains(t, strings.TrimSpace(result.Stdout), dir)
}

func TestExecuteOutputCapped(t *testing.T) {
	result := permissiveExecutor().Execute(context.Background(), "yes x | head -c 100000", Options{
		MaxOutputBytes: 1024,
	})

	require.True(t, result.Success)
	assert.Len(t, result.Stdout, 1024)
}

func TestExecuteStream(t *testing.T) {
	var mu sync.Mutex
	var chunks []string

	result := permissiveExecutor().ExecuteStream(context.Background(),
		"echo first; echo second 1>&2", Options{},
		func(stream string, chunk []byte) {
			mu.Lock()
			chunks = append(chunks, stream+":"+string(chunk))
			mu.Unlock()
		})

	require.True(t, result.Success)
	assert.Equal(t, "first\n", result.Stdout)
	assert.Equal(t, "second\n", result.Stderr)

	mu.Lock()
	defer mu.Unlock()
	joined := strings.Join(chunks, "")
	assert.Contains(t, joined, StreamStdout+":first")
	assert.Contains(t, joined, StreamStderr+":second")
}

func TestExecuteStreamTimeoutStillReturnsResult(t *testing.T) {
	var mu sync.Mutex
	received := false

	result := permissiveExecutor().ExecuteStream(context.Background(),
		"echo partial; sleep 10", Options{Timeout: 300 * time.Millisecond},
		func(stream string, chunk []byte) {
			mu.Lock()
			received = true
			mu.Unlock()
		})

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "timed out")
	// Chunks already delivered are not rolled back.
	assert.Contains(t, result.Stdout, "partial")
	mu.Lock()
	assert.True(t, received)
	mu.Unlock()
}

func TestScrubEnv(t *testing.T) {
	base := []string{
		"PATH=/usr/bin",
		"HOME=/home/u",
		"AWS_SECRET_ACCESS_KEY=abc",
		"DB_PASSWORD=hunter2",
		"GITHUB_TOKEN=ghp_x",
		"MY_API_KEY=k",
		"SSH_PRIVATE_KEY=p",
		"EDITOR=vi",
	}
	env := ScrubEnv(base, map[string]string{"EXTRA": "1"})

	joined := strings.Join(env, "\n")
	assert.Contains(t, joined, "PATH=/usr/bin")
	assert.Contains(t, joined, "HOME=/home/u")
	assert.Contains(t, joined, "EDITOR=vi")
	assert.Contains(t, joined, "EXTRA=1")

	assert.NotContains(t, joined, "AWS_SECRET_ACCESS_KEY")
	assert.NotContains(t, joined, "DB_PASSWORD")
	assert.NotContains(t, joined, "GITHUB_TOKEN")
	assert.NotContains(t, joined, "MY_API_KEY")
	assert.NotContains(t, joined, "SSH_PRIVATE_KEY")
}

func TestScrubEnvSafelistWins(t *testing.T) {
	// Names on the safelist or with a tool prefix pass through even if
	// they contain a sensitive marker.
	env := ScrubEnv([]string{"WARDEN_TOKEN_FILE=/tmp/t"}, nil)
	assert.Contains(t, strings.Join(env, "\n"), "WARDEN_TOKEN_FILE=/tmp/t")

	// Overrides are scrubbed too.
	env = ScrubEnv(nil, map[string]string{"SERVICE_TOKEN": "x"})
	assert.NotContains(t, strings.Join(env, "\n"), "SERVICE_TOKEN")
}

func TestIsSafeCommand(t *testing.T) {
	safe := []string{
		"ls -la",
		"git status",
		"npm test",
		"rm build/output.txt",
	}
	for _, cmd := range safe {
		assert.NoError(t, IsSafeCommand(cmd), cmd)
	}

	destructive := []string{
		"rm -rf /",
		"sudo rm -fr /",
		"mkfs.ext4 /dev/sda1",
		"chmod -R 777 /etc",
		":(){ :|:& };:",
	}
	for _, cmd := range destructive {
		assert.Error(t, IsSafeCommand(cmd), cmd)
	}
}
