//go:build unix

package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"shellbox/pkg/logger"
)

const defaultMaxOutputBytes = 1 << 20 // 1 MB per stream

// LauncherConfig tunes the process launcher.
type LauncherConfig struct {
	// MaxOutputBytes caps the bytes captured per output stream. Excess
	// output is discarded, not an error. Zero means the default.
	MaxOutputBytes int
}

// Launcher runs shell commands under a sandbox policy. It holds no
// per-execution state; concurrent Execute calls are safe.
type Launcher struct {
	maxOutputBytes int
	logger         *logger.Logger
}

// Result carries the outcome of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration

	// Truncated is set when either stream hit the output cap.
	Truncated bool
}

// NewLauncher creates a launcher.
func NewLauncher(cfg LauncherConfig, log *logger.Logger) *Launcher {
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaultMaxOutputBytes
	}
	if log == nil {
		log = logger.New()
	}
	return &Launcher{
		maxOutputBytes: cfg.MaxOutputBytes,
		logger:         log.WithField("component", "launcher"),
	}
}

// Execute runs command via /bin/sh -c under the given policy and blocks
// until it finishes or ctx is done. On a nonzero exit the Result is
// returned together with a PolicyDeniedError or CommandFailedError so the
// caller still sees the captured output.
func (l *Launcher) Execute(ctx context.Context, command string, policy Policy) (*Result, error) {
	if err := policy.Validate(); err != nil {
		return nil, &SpawnError{Err: err}
	}

	log := l.logger.WithFields("mode", policy.Mode.String(), "dir", policy.WorkingDir)

	if policy.Mode == ModeDangerFullAccess {
		log.Debug("executing without sandbox")
		return l.run(ctx, command, policy, false)
	}

	if !archSupported() {
		return nil, &ExecutionError{
			Stage: "arch",
			Err:   fmt.Errorf("%w: no sandbox support for %s", ErrSandboxUnsupported, runtime.GOARCH),
		}
	}

	log.Debug("executing sandboxed", "writable_roots", len(policy.EffectiveWritableRoots()))
	return l.run(ctx, command, policy, true)
}

func archSupported() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

func (l *Launcher) run(ctx context.Context, command string, policy Policy, sandboxed bool) (*Result, error) {
	var (
		cmd         *exec.Cmd
		statusRead  *os.File
		statusWrite *os.File
	)

	if sandboxed {
		exe, err := os.Executable()
		if err != nil {
			return nil, &SpawnError{Err: fmt.Errorf("cannot locate own executable: %w", err)}
		}

		r, w, err := os.Pipe()
		if err != nil {
			return nil, &SpawnError{Err: fmt.Errorf("cannot create status pipe: %w", err)}
		}
		statusRead, statusWrite = r, w

		spec := InitSpec{
			Command:       command,
			WorkingDir:    policy.WorkingDir,
			WritableRoots: policy.EffectiveWritableRoots(),
		}

		env := ScrubInitEnv(os.Environ())
		env = append(env,
			MarkerSandboxVar+"="+MarkerSandboxValue,
			MarkerNetworkDisabledVar+"="+MarkerNetworkDisabledValue,
		)
		env = append(env, spec.EncodeEnv()...)

		cmd = exec.CommandContext(ctx, exe)
		cmd.Env = env
		cmd.ExtraFiles = []*os.File{statusWrite}
	} else {
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
		cmd.Env = os.Environ()
	}

	cmd.Dir = policy.WorkingDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Kill the whole process group so the shell's children die too.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	// Without this, Wait can block forever on a grandchild that inherited
	// stdout and survived the group kill.
	cmd.WaitDelay = 10 * time.Second

	stdout := &limitedWriter{limit: l.maxOutputBytes}
	stderr := &limitedWriter{limit: l.maxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if statusRead != nil {
			statusRead.Close()
			statusWrite.Close()
		}
		return nil, &SpawnError{Err: err}
	}

	if sandboxed {
		// Start duplicated the write end into the child; close our
		// copy so EOF on the read end tracks the child alone.
		statusWrite.Close()

		if err := l.awaitEnforcement(statusRead, cmd); err != nil {
			return nil, err
		}
	}

	err := cmd.Wait()
	duration := time.Since(start)

	result := &Result{
		Stdout:    stdout.text(),
		Stderr:    stderr.text(),
		Duration:  duration,
		Truncated: stdout.truncated || stderr.truncated,
	}

	if err == nil {
		l.logger.Debug("command completed", "exit_code", 0, "duration", duration)
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, &ExecutionError{Stage: "wait", Err: err}
	}

	result.ExitCode = exitCodeFromState(exitErr)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, &ExecutionError{Stage: "wait", Err: ctxErr}
	}

	output := combinedOutput(result)
	if sandboxed && likelySandboxDenial(result.ExitCode, output) {
		l.logger.Info("command denied by sandbox", "exit_code", result.ExitCode)
		return result, &PolicyDeniedError{ExitCode: result.ExitCode, Output: output}
	}

	l.logger.Debug("command failed", "exit_code", result.ExitCode, "duration", duration)
	return result, &CommandFailedError{ExitCode: result.ExitCode, Output: output}
}

// awaitEnforcement reads the one-line enforcement report the child writes
// on the status pipe before it execs the command.
func (l *Launcher) awaitEnforcement(r *os.File, cmd *exec.Cmd) error {
	defer r.Close()

	line, err := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSuffix(line, "\n")

	switch {
	case line == StatusOK:
		return nil
	case strings.HasPrefix(line, StatusUnsupportedPrefix):
		reapChild(cmd)
		msg := strings.TrimPrefix(line, StatusUnsupportedPrefix)
		return &ExecutionError{Stage: "enforce", Err: fmt.Errorf("%s: %w", msg, ErrSandboxUnsupported)}
	case strings.HasPrefix(line, StatusErrorPrefix):
		reapChild(cmd)
		return &ExecutionError{Stage: "enforce", Err: errors.New(strings.TrimPrefix(line, StatusErrorPrefix))}
	default:
		reapChild(cmd)
		if err == nil {
			err = fmt.Errorf("malformed status line %q", line)
		}
		return &ExecutionError{Stage: "status-pipe", Err: err}
	}
}

// reapChild kills and waits for the child after an enforcement failure so
// no zombie is left behind.
func reapChild(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	_ = cmd.Wait()
}

func exitCodeFromState(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}

func combinedOutput(r *Result) string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// limitedWriter keeps at most limit bytes and silently drops the rest.
type limitedWriter struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if remain := w.limit - w.buf.Len(); remain > 0 {
		if len(p) > remain {
			p = p[:remain]
			w.truncated = true
		}
		w.buf.Write(p)
	} else if n > 0 {
		w.truncated = true
	}
	return n, nil
}

func (w *limitedWriter) text() string {
	return strings.ToValidUTF8(w.buf.String(), "�")
}
