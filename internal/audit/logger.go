// Package audit records every gate decision and action outcome as an
// append-only sequence of JSON lines, partitioned by calendar day.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the recorded outcome of an audited action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// Entry is one immutable audit record. Entries are never mutated or
// deleted after being written.
type Entry struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Action        string         `json:"action"`
	Status        Status         `json:"status"`
	UserConfirmed *bool          `json:"user_confirmed,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Logger appends entries to day-partitioned log files under
// <workspace>/.warden/audit. Auditing is best-effort with respect to
// the action being audited: a failed append is logged locally and never
// blocks or reverses the action.
type Logger struct {
	dir string
	mu  sync.Mutex
	log *slog.Logger
	now func() time.Time
}

// NewLogger creates a logger writing under the given audit directory.
func NewLogger(dir string, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{dir: dir, log: log, now: time.Now}
}

// Record stamps the entry with the current time and an ID, then appends
// it as one JSON line to the current day's log file.
func (l *Logger) Record(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	entry.ID = uuid.NewString()
	entry.Timestamp = now

	if err := l.append(entry, now); err != nil {
		l.log.Warn("audit append failed", "action", entry.Action, "error", err)
	}
}

func (l *Logger) append(entry Entry, now time.Time) error {
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return fmt.Errorf("create audit directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	path := l.pathFor(now)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// pathFor returns the log file for the given instant's calendar day.
func (l *Logger) pathFor(now time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf("audit-%s.log", now.Format("2006-01-02")))
}

// RecordTool records the outcome of a tool invocation.
func (l *Logger) RecordTool(name string, status Status, metadata map[string]any) {
	l.Record(Entry{Action: "tool:" + name, Status: status, Metadata: metadata})
}

// RecordConfirmation records a user's answer to a confirmation prompt.
func (l *Logger) RecordConfirmation(action string, confirmed bool) {
	status := StatusDenied
	if confirmed {
		status = StatusSuccess
	}
	l.Record(Entry{
		Action:        "confirmation:" + action,
		Status:        status,
		UserConfirmed: &confirmed,
	})
}

// RecordFileWrite records a file mutation with a hash of the written
// content.
func (l *Logger) RecordFileWrite(path string, content []byte, status Status) {
	sum := sha256.Sum256(content)
	l.Record(Entry{
		Action: "file:write",
		Status: status,
		Metadata: map[string]any{
			"path":         path,
			"content_hash": hex.EncodeToString(sum[:]),
			"bytes":        len(content),
		},
	})
}

// RecordExec records a sandboxed command outcome.
func (l *Logger) RecordExec(command string, exitCode int, status Status) {
	l.Record(Entry{
		Action: "exec:command",
		Status: status,
		Metadata: map[string]any{
			"command":   command,
			"exit_code": exitCode,
		},
	})
}

// RecordPolicyViolation records a gate denial.
func (l *Logger) RecordPolicyViolation(risk, resource, reason string) {
	l.Record(Entry{
		Action: "policy:violation:" + risk,
		Status: StatusDenied,
		Metadata: map[string]any{
			"resource": resource,
			"reason":   reason,
		},
	})
}

// RecordAgentAction records a higher-level agent decision.
func (l *Logger) RecordAgentAction(action string, status Status, metadata map[string]any) {
	l.Record(Entry{Action: "agent:" + action, Status: status, Metadata: metadata})
}
