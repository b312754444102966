// Package pipeline composes the gate, scanner, patch engine, sandbox
// and audit log into the single mediation layer every side-effecting
// action flows through: policy check, optional secret scan, action,
// audit record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/warden-dev/warden/internal/audit"
	"github.com/warden-dev/warden/internal/config"
	"github.com/warden-dev/warden/internal/log"
	"github.com/warden-dev/warden/internal/patch"
	"github.com/warden-dev/warden/internal/policy"
	"github.com/warden-dev/warden/internal/sandbox"
	"github.com/warden-dev/warden/internal/secrets"
)

// Confirmer obtains user confirmation for actions the policy flags as
// needing it.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// AutoApprove is a non-interactive Confirmer with a fixed answer.
type AutoApprove struct {
	Answer bool
}

// Confirm returns the fixed answer.
func (a AutoApprove) Confirm(string) (bool, error) {
	return a.Answer, nil
}

// Pipeline is the policy-gated mutation pipeline for one workspace.
// It is designed for one agent session driving one action at a time.
type Pipeline struct {
	gate     *policy.Gate
	scanner  *secrets.Scanner
	engine   *patch.Engine
	executor *sandbox.Executor
	auditor  *audit.Logger
	confirm  Confirmer
	log      *slog.Logger
}

// New wires a pipeline for the given workspace and policy. A nil
// confirmer rejects every action that requires confirmation.
func New(cfg *policy.Config, workspace string, logger *slog.Logger, confirm Confirmer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	gate := policy.NewGate(cfg)
	return &Pipeline{
		gate:     gate,
		scanner:  secrets.NewScanner(),
		engine:   patch.NewEngine(gate),
		executor: sandbox.NewExecutor(gate),
		auditor:  audit.NewLogger(config.AuditDir(workspace), logger),
		confirm:  confirm,
		log:      logger,
	}
}

// Gate exposes the pipeline's gate for read-only policy queries.
func (p *Pipeline) Gate() *policy.Gate {
	return p.gate
}

// Scanner exposes the pipeline's secret scanner.
func (p *Pipeline) Scanner() *secrets.Scanner {
	return p.scanner
}

// Engine exposes the pipeline's patch engine for diff construction and
// preview.
func (p *Pipeline) Engine() *patch.Engine {
	return p.engine
}

// Audit exposes the pipeline's audit logger.
func (p *Pipeline) Audit() *audit.Logger {
	return p.auditor
}

// ReadFile reads a file through the gate.
func (p *Pipeline) ReadFile(path string) ([]byte, error) {
	decision := p.gate.Evaluate(policy.Action{
		Name:  "file.read",
		Risk:  policy.RiskRead,
		Scope: []string{path},
	}, nil)
	if !decision.Allowed {
		p.auditor.RecordPolicyViolation(string(policy.RiskRead), path, decision.Reason)
		return nil, &policy.DeniedError{Risk: policy.RiskRead, Resource: path, Reason: decision.Reason}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.auditor.RecordTool("readFile", audit.StatusFailure, map[string]any{"path": path})
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	p.auditor.RecordTool("readFile", audit.StatusSuccess, map[string]any{"path": path})
	return data, nil
}

// WriteFile computes a diff against the file's current content and
// applies it through the full pipeline: exclusion veto, secret scan,
// gate decision, optional confirmation, gated apply, audit record.
func (p *Pipeline) WriteFile(path, newContent string, opts patch.Options) patch.ApplyResult {
	denied := func(reason string) patch.ApplyResult {
		p.log.Debug("write denied", log.PathKey, path, "reason", reason)
		p.auditor.RecordPolicyViolation(string(policy.RiskWrite), path, reason)
		return patch.ApplyResult{
			FilePath: path,
			Err:      &policy.DeniedError{Risk: policy.RiskWrite, Resource: path, Reason: reason},
		}
	}

	if secrets.ShouldExclude(path) {
		return denied("path is excluded from automated writes")
	}

	// Only high-confidence detections veto the write. Advisory hits
	// (emails, hash-shaped runs) are normal file content and stay
	// visible through ScanFile / the scan command instead.
	if hits := p.scanner.Scan(newContent).HighConfidenceMatches(); len(hits) > 0 {
		return denied(fmt.Sprintf("content contains %d potential secret(s); redact before writing", len(hits)))
	}

	decision := p.gate.Evaluate(policy.Action{
		Name:  "file.write",
		Risk:  policy.RiskWrite,
		Scope: []string{path},
	}, nil)
	if !decision.Allowed {
		return denied(decision.Reason)
	}

	if decision.RequiresConfirmation && !opts.DryRun {
		ok, err := p.userConfirmed(fmt.Sprintf("Write %s?", path))
		p.auditor.RecordConfirmation("file.write", ok)
		if err != nil {
			return patch.ApplyResult{FilePath: path, Err: fmt.Errorf("confirmation: %w", err)}
		}
		if !ok {
			return patch.ApplyResult{
				FilePath: path,
				Err:      &policy.DeniedError{Risk: policy.RiskWrite, Resource: path, Reason: "declined by user"},
			}
		}
	}

	diff, err := p.engine.DiffFromDisk(path, newContent)
	if err != nil {
		return patch.ApplyResult{FilePath: path, Err: err}
	}

	result := p.engine.Apply(diff, opts)

	status := audit.StatusFailure
	if result.Success {
		status = audit.StatusSuccess
	}
	p.log.Info("file write", log.PathKey, path, log.StatusKey, string(status))
	p.auditor.RecordFileWrite(path, []byte(newContent), status)

	return result
}

// Exec runs a shell command through the pipeline: coarse safety veto,
// gate decision, optional confirmation, sandboxed execution, audit
// record. On denial no process is spawned.
func (p *Pipeline) Exec(ctx context.Context, command string, opts sandbox.Options) sandbox.Result {
	return p.runCommand(ctx, command, opts, nil)
}

// ExecStream is Exec with streaming output delivery. It runs the same
// pre-flight checks, including confirmation; streaming never weakens
// the gate.
func (p *Pipeline) ExecStream(ctx context.Context, command string, opts sandbox.Options, sink sandbox.Sink) sandbox.Result {
	return p.runCommand(ctx, command, opts, sink)
}

func (p *Pipeline) runCommand(ctx context.Context, command string, opts sandbox.Options, sink sandbox.Sink) sandbox.Result {
	denied := func(reason string) sandbox.Result {
		p.log.Debug("exec denied", log.CommandKey, command, "reason", reason)
		p.auditor.RecordPolicyViolation(string(policy.RiskExec), command, reason)
		return sandbox.Result{
			Command:  command,
			ExitCode: -1,
			Err:      &policy.DeniedError{Risk: policy.RiskExec, Resource: command, Reason: reason},
		}
	}

	if err := sandbox.IsSafeCommand(command); err != nil {
		return denied(err.Error())
	}

	decision := p.gate.Evaluate(
		policy.Action{Name: "shell.run", Risk: policy.RiskExec},
		map[string]string{policy.ContextCommand: command},
	)
	if !decision.Allowed {
		return denied(decision.Reason)
	}

	if decision.RequiresConfirmation {
		ok, err := p.userConfirmed(fmt.Sprintf("Run %q?", command))
		p.auditor.RecordConfirmation("shell.run", ok)
		if err != nil {
			return sandbox.Result{Command: command, ExitCode: -1, Err: fmt.Errorf("confirmation: %w", err)}
		}
		if !ok {
			return sandbox.Result{
				Command:  command,
				ExitCode: -1,
				Err:      &policy.DeniedError{Risk: policy.RiskExec, Resource: command, Reason: "declined by user"},
			}
		}
	}

	start := time.Now()
	var result sandbox.Result
	if sink != nil {
		result = p.executor.ExecuteStream(ctx, command, opts, sink)
	} else {
		result = p.executor.Execute(ctx, command, opts)
	}

	status := audit.StatusFailure
	if result.Success {
		status = audit.StatusSuccess
	}
	p.log.Info("command run",
		log.CommandKey, command,
		log.StatusKey, string(status),
		log.DurationKey, time.Since(start).Milliseconds())
	p.auditor.RecordExec(command, result.ExitCode, status)

	return result
}

// ScanFile scans a file's content for secrets, honoring the path-level
// exclusion veto.
func (p *Pipeline) ScanFile(path string) (*secrets.Result, error) {
	if secrets.ShouldExclude(path) {
		return nil, fmt.Errorf("%s: path is excluded from scanning", path)
	}
	data, err := p.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.scanner.Scan(string(data)), nil
}

func (p *Pipeline) userConfirmed(prompt string) (bool, error) {
	if p.confirm == nil {
		return false, nil
	}
	return p.confirm.Confirm(prompt)
}
