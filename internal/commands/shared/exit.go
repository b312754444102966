package shared

import (
	"fmt"
	"os"

	"github.com/warden-dev/warden/internal/policy"
)

// Exit codes. Policy denials get a distinct code so scripts can tell
// "refused" from "broke".
const (
	ExitOK     = 0
	ExitError  = 1
	ExitDenied = 3
)

// HandleExitError prints the error and exits with the matching code.
func HandleExitError(err error) {
	if err == nil {
		os.Exit(ExitOK)
	}
	fmt.Fprintln(os.Stderr, RenderError(err.Error()))
	if policy.IsDenied(err) {
		os.Exit(ExitDenied)
	}
	os.Exit(ExitError)
}
