//go:build unix

// Package sandboxinit is the child half of the sandboxed launcher. The
// launcher re-executes its own binary with an init marker in the
// environment; main dispatches here before anything else runs. This
// process applies the network filter, then the filesystem rules, reports
// the result on the inherited status pipe, and replaces itself with the
// shell running the command. Nothing after a successful exec belongs to
// this program anymore.
package sandboxinit

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"shellbox/internal/sandbox"
)

// Run performs restriction and exec. It only returns control to the
// caller by exiting the process.
func Run() {
	status := os.NewFile(sandbox.StatusPipeFD, "sandbox-status")

	spec, err := sandbox.DecodeInitSpecFromEnv()
	if err != nil {
		fail(status, fmt.Errorf("bad init spec: %w", err))
	}

	if err := os.Chdir(spec.WorkingDir); err != nil {
		fail(status, fmt.Errorf("chdir: %w", err))
	}

	if err := sandbox.ApplyNetworkFilter(); err != nil {
		fail(status, fmt.Errorf("network filter: %w", err))
	}

	if err := sandbox.ApplyFilesystemRules(spec.WritableRoots); err != nil {
		fail(status, fmt.Errorf("filesystem rules: %w", err))
	}

	report(status, sandbox.StatusOK)

	// The pipe must not leak into the command.
	if status != nil {
		_, _ = unix.FcntlInt(status.Fd(), unix.F_SETFD, unix.FD_CLOEXEC)
	}

	env := sandbox.ScrubInitEnv(os.Environ())
	argv := []string{"sh", "-c", spec.Command}
	if err := unix.Exec("/bin/sh", argv, env); err != nil {
		fmt.Fprintf(os.Stderr, "exec /bin/sh: %v\n", err)
		os.Exit(127)
	}
}

// fail reports an enforcement failure on the status pipe and exits
// without running the command.
func fail(status *os.File, err error) {
	prefix := sandbox.StatusErrorPrefix
	if errors.Is(err, sandbox.ErrSandboxUnsupported) {
		prefix = sandbox.StatusUnsupportedPrefix
	}
	report(status, prefix+err.Error())
	os.Exit(1)
}

func report(status *os.File, line string) {
	if status == nil {
		return
	}
	_, _ = fmt.Fprintln(status, line)
}
