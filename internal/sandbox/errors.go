package sandbox

import (
	"errors"
	"fmt"
)

// ErrSandboxUnsupported indicates the running kernel or CPU architecture
// cannot enforce the requested sandbox.
var ErrSandboxUnsupported = errors.New("sandbox not supported on this system")

// SpawnError means the child process could not be started at all. The
// command never ran.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn sandboxed process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExecutionError means the child started but sandbox enforcement or exec
// failed before the command ran, or the execution machinery itself broke.
type ExecutionError struct {
	// Stage names the step that failed: "arch", "enforce",
	// "status-pipe" or "wait".
	Stage string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sandbox execution failed at %s: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// PolicyDeniedError means the command ran and failed in a way attributable
// to the sandbox blocking it.
type PolicyDeniedError struct {
	ExitCode int
	Output   string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("command denied by sandbox policy (exit code %d)", e.ExitCode)
}

// CommandFailedError means the command ran to completion and failed on its
// own, with no evidence the sandbox was involved.
type CommandFailedError struct {
	ExitCode int
	Output   string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.ExitCode)
}
