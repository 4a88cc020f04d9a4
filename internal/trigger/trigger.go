// Package trigger is the shell-subprocess executor shared by the
// Event process (running trigger scripts) and the Task process
// (running task scripts). Both reduce to the same operation: split a
// path into directory and basename, run the shell on the basename
// with that directory as the working directory, and capture
// stdout/stderr/exit status.
package trigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime/debug"

	"github.com/mercadolab/workflow-engine/internal/logger"
)

// ErrBadPath is returned when a script path cannot be decomposed into
// a non-empty directory and basename, for either a trigger or a task
// script.
var ErrBadPath = errors.New("script path has no usable directory/basename split")

// Result is the captured outcome of running a script.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Succeeded bool
}

// Run decomposes path P into parent directory D and basename B,
// invokes the shell interpreter on B with working directory D, and
// captures stdout/stderr. A spawn failure is treated as a non-zero
// exit for accounting purposes; a panic in this goroutine is recovered
// and converted to an error rather than crashing the process.
func Run(ctx context.Context, path string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logger.Error().
				Str("path", path).
				Interface("panic", r).
				Str("stack", string(stack)).
				Msg("trigger/task execution panicked")
			err = fmt.Errorf("script execution panicked: %v", r)
		}
	}()

	dir, base, ok := splitScriptPath(path)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrBadPath, path)
	}

	cmd := exec.CommandContext(ctx, "bash", base)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res = Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		res.ExitCode = 0
		res.Succeeded = true
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		res.Succeeded = false
	default:
		// Spawn failure (e.g. missing interpreter, permission denied):
		// counts as a non-zero exit.
		res.ExitCode = -1
		res.Succeeded = false
		res.Stderr += runErr.Error()
	}

	return res, nil
}

// splitScriptPath decomposes an absolute path into its parent
// directory and basename. Both must be non-empty for a path to be
// usable.
func splitScriptPath(path string) (dir, base string, ok bool) {
	if path == "" {
		return "", "", false
	}
	dir = filepath.Dir(path)
	base = filepath.Base(path)
	if dir == "" || dir == "." || base == "" || base == "." || base == string(filepath.Separator) {
		return "", "", false
	}
	return dir, base, true
}
