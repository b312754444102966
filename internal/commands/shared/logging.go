package shared

import (
	"log/slog"

	"github.com/warden-dev/warden/internal/log"
)

// NewLogger builds the process logger from the workspace log level and
// the CLI flags. --verbose forces debug, --json switches to JSON lines
// so log output stays machine-parseable alongside JSON results.
func NewLogger(level string) *slog.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = level
	if Verbose() {
		cfg.Level = "debug"
	}
	if JSON() {
		cfg.Format = log.FormatJSON
	}
	return log.New(cfg)
}
