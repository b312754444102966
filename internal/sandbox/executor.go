// Package sandbox executes shell commands under an allowlist, with
// environment scrubbing, timeouts and bounded output capture. It is not
// OS-level isolation.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/warden-dev/warden/internal/policy"
)

const (
	// DefaultTimeout bounds command execution when the caller does not.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxOutputBytes bounds captured output per stream.
	DefaultMaxOutputBytes = 1 << 20
)

// Options controls one command execution.
type Options struct {
	// Dir is the working directory (empty = inherit).
	Dir string

	// Env holds caller-supplied overrides merged over the inherited
	// environment before scrubbing.
	Env map[string]string

	// Timeout kills the command when exceeded (0 = DefaultTimeout).
	Timeout time.Duration

	// MaxOutputBytes caps captured bytes per stream (0 = default).
	MaxOutputBytes int
}

// Result is the outcome of a sandboxed command.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	Command  string
	Err      error
}

// Stream names delivered to a Sink.
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

// Sink receives output chunks as they arrive during streaming
// execution. Calls are serialized.
type Sink func(stream string, chunk []byte)

// Executor runs commands behind the injected gate.
type Executor struct {
	gate *policy.Gate
}

// NewExecutor creates an executor bound to the given gate.
func NewExecutor(gate *policy.Gate) *Executor {
	return &Executor{gate: gate}
}

// Execute runs a command and returns its aggregated result. The gate is
// consulted before spawning; on denial no process is started.
func (e *Executor) Execute(ctx context.Context, command string, opts Options) Result {
	return e.run(ctx, command, opts, nil)
}

// ExecuteStream is like Execute but also delivers stdout/stderr chunks
// to sink as they arrive. The final Result still aggregates the full
// captured output, and the same timeout-and-kill behavior applies.
func (e *Executor) ExecuteStream(ctx context.Context, command string, opts Options, sink Sink) Result {
	return e.run(ctx, command, opts, sink)
}

func (e *Executor) run(ctx context.Context, command string, opts Options, sink Sink) Result {
	result := Result{Command: command, ExitCode: -1}

	decision := e.gate.Evaluate(
		policy.Action{Name: "shell.run", Risk: policy.RiskExec},
		map[string]string{policy.ContextCommand: command},
	)
	if !decision.Allowed {
		result.Err = &policy.DeniedError{
			Risk:     policy.RiskExec,
			Resource: command,
			Reason:   decision.Reason,
		}
		return result
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := opts.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxOutputBytes
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var sinkMu sync.Mutex
	stdout := newCaptureWriter(StreamStdout, maxBytes, sink, &sinkMu)
	stderr := newCaptureWriter(StreamStderr, maxBytes, sink, &sinkMu)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = opts.Dir
	cmd.Env = ScrubEnv(os.Environ(), opts.Env)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Run the command in its own process group so cancellation kills
	// the whole tree, not just the shell.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.Err = fmt.Errorf("command timed out after %s", timeout)
			return result
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.Err = fmt.Errorf("command exited with code %d", result.ExitCode)
			return result
		}
		result.Err = fmt.Errorf("spawn command: %w", err)
		return result
	}

	result.ExitCode = 0
	result.Success = true
	return result
}

// captureWriter buffers output up to a byte limit and optionally
// forwards chunks to a sink. Writes never fail; bytes past the limit
// are dropped so a chatty command cannot exhaust memory.
type captureWriter struct {
	stream    string
	limit     int
	buf       bytes.Buffer
	truncated bool
	sink      Sink
	sinkMu    *sync.Mutex
	mu        sync.Mutex
}

func newCaptureWriter(stream string, limit int, sink Sink, sinkMu *sync.Mutex) *captureWriter {
	return &captureWriter{stream: stream, limit: limit, sink: sink, sinkMu: sinkMu}
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	if remaining := w.limit - w.buf.Len(); remaining > 0 {
		if len(p) <= remaining {
			w.buf.Write(p)
		} else {
			w.buf.Write(p[:remaining])
			w.truncated = true
		}
	} else if len(p) > 0 {
		w.truncated = true
	}
	w.mu.Unlock()

	if w.sink != nil && len(p) > 0 {
		chunk := make([]byte, len(p))
		copy(chunk, p)
		w.sinkMu.Lock()
		w.sink(w.stream, chunk)
		w.sinkMu.Unlock()
	}
	return len(p), nil
}

func (w *captureWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}
