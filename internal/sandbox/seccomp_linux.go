//go:build linux

package sandbox

import (
	"fmt"
	"runtime"

	libseccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"
)

// deniedSyscalls are blocked outright with EPERM. Everything network plus
// ptrace; the rest of the syscall surface stays open (denylist filter).
var deniedSyscalls = []string{
	"connect",
	"bind",
	"listen",
	"accept",
	"accept4",
	"getpeername",
	"getsockname",
	"shutdown",
	"sendto",
	"sendmsg",
	"sendmmsg",
	"recvfrom",
	"recvmsg",
	"recvmmsg",
	"getsockopt",
	"setsockopt",
	"ptrace",
}

// condDeniedSyscalls are blocked unless the domain argument (arg0) is
// AF_UNIX, so local IPC keeps working while inet sockets fail.
var condDeniedSyscalls = []string{
	"socket",
	"socketpair",
}

// networkFilterSupported reports whether the BPF filter can run on this
// CPU architecture.
func networkFilterSupported() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

// ApplyNetworkFilter installs the network-blocking seccomp filter on the
// calling process. Irreversible; every syscall in the denylist returns
// EPERM from then on. Must run before any filesystem restriction so an
// enforcement failure aborts as early as possible.
func ApplyNetworkFilter() error {
	if !networkFilterSupported() {
		return fmt.Errorf("%w: seccomp network filter not built for %s", ErrSandboxUnsupported, runtime.GOARCH)
	}

	filter, err := libseccomp.NewFilter(libseccomp.ActAllow)
	if err != nil {
		return fmt.Errorf("failed to create seccomp filter: %w", err)
	}
	defer filter.Release()

	if err := filter.SetNoNewPrivsBit(true); err != nil {
		return fmt.Errorf("failed to enable no-new-privs on filter: %w", err)
	}
	if err := filter.SetTsync(true); err != nil {
		return fmt.Errorf("failed to enable thread sync on filter: %w", err)
	}

	denyAction := libseccomp.ActErrno.SetReturnCode(int16(unix.EPERM))

	for _, name := range deniedSyscalls {
		sc, err := libseccomp.GetSyscallFromName(name)
		if err != nil {
			// Not every syscall exists on every architecture
			// (e.g. sendmmsg on older ABIs). Skip unknowns.
			continue
		}
		if err := filter.AddRule(sc, denyAction); err != nil {
			return fmt.Errorf("failed to add deny rule for %s: %w", name, err)
		}
	}

	for _, name := range condDeniedSyscalls {
		sc, err := libseccomp.GetSyscallFromName(name)
		if err != nil {
			continue
		}
		cond, err := libseccomp.MakeCondition(0, libseccomp.CompareNotEqual, uint64(unix.AF_UNIX))
		if err != nil {
			return fmt.Errorf("failed to build AF_UNIX condition for %s: %w", name, err)
		}
		if err := filter.AddRuleConditional(sc, denyAction, []libseccomp.ScmpCondition{cond}); err != nil {
			return fmt.Errorf("failed to add conditional deny rule for %s: %w", name, err)
		}
	}

	if err := filter.Load(); err != nil {
		return fmt.Errorf("failed to load seccomp filter: %w", err)
	}

	return nil
}
