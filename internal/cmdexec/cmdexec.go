// Package cmdexec runs external helper binaries and captures their output.
// Callers treat helpers as best-effort data sources, so failures of any kind
// collapse to an empty string instead of an error.
package cmdexec

import (
	"context"
	"os/exec"
	"strings"

	"github.com/hwmond/hwmond/internal/logger"
)

// Output runs the command and returns its captured standard output, trimmed.
// Execution is bounded by the context. Any failure (missing binary, non-zero
// exit, timeout) returns the empty string.
func Output(ctx context.Context, name string, args ...string) string {
	if name == "" {
		return ""
	}

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		logger.Debug().Str("command", name).Err(err).Msg("helper command failed")
		return ""
	}

	return strings.TrimSpace(string(out))
}

// LookPath reports whether the named binary is resolvable. An explicit path
// is returned unchanged when it exists on PATH resolution rules.
func LookPath(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}

	return path, true
}
