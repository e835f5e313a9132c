//go:build linux

package sandbox

import (
	"fmt"
	"runtime"

	seccompbpf "github.com/elastic/go-seccomp-bpf"
	"golang.org/x/sys/unix"
)

// fsAccessMask builds the filesystem access set enforcement would request,
// clamped to what the kernel's ABI version knows about. Asking for flags
// the kernel has never heard of makes landlock_create_ruleset fail with
// EINVAL, so the probe has to clamp the same way enforcement degrades.
func fsAccessMask(abi int) uint64 {
	mask := uint64(unix.LANDLOCK_ACCESS_FS_EXECUTE |
		unix.LANDLOCK_ACCESS_FS_WRITE_FILE |
		unix.LANDLOCK_ACCESS_FS_READ_FILE |
		unix.LANDLOCK_ACCESS_FS_READ_DIR |
		unix.LANDLOCK_ACCESS_FS_REMOVE_DIR |
		unix.LANDLOCK_ACCESS_FS_REMOVE_FILE |
		unix.LANDLOCK_ACCESS_FS_MAKE_CHAR |
		unix.LANDLOCK_ACCESS_FS_MAKE_DIR |
		unix.LANDLOCK_ACCESS_FS_MAKE_REG |
		unix.LANDLOCK_ACCESS_FS_MAKE_SOCK |
		unix.LANDLOCK_ACCESS_FS_MAKE_FIFO |
		unix.LANDLOCK_ACCESS_FS_MAKE_BLOCK |
		unix.LANDLOCK_ACCESS_FS_MAKE_SYM)
	if abi >= 2 {
		mask |= unix.LANDLOCK_ACCESS_FS_REFER
	}
	if abi >= 3 {
		mask |= unix.LANDLOCK_ACCESS_FS_TRUNCATE
	}
	if abi >= 5 {
		mask |= unix.LANDLOCK_ACCESS_FS_IOCTL_DEV
	}
	return mask
}

// probeLandlock checks that a ruleset with the enforcement-level access
// set can actually be created, not just that the ABI call answers.
func probeLandlock() error {
	abi := landlockABI()
	if abi < 1 {
		return fmt.Errorf("%w: kernel lacks Landlock support", ErrSandboxUnsupported)
	}

	attr := unix.LandlockRulesetAttr{Access_fs: fsAccessMask(abi)}
	fd, err := unix.LandlockCreateRuleset(&attr, 0)
	if err != nil {
		return fmt.Errorf("%w: landlock ruleset creation failed: %v", ErrSandboxUnsupported, err)
	}
	unix.Close(fd)

	return nil
}

// probeSeccomp assembles the network denylist as a BPF program in memory
// without installing it, proving the filter can be built here.
func probeSeccomp() error {
	if !networkFilterSupported() {
		return fmt.Errorf("%w: seccomp network filter not built for %s", ErrSandboxUnsupported, runtime.GOARCH)
	}

	names := make([]string, 0, len(deniedSyscalls)+len(condDeniedSyscalls))
	names = append(names, deniedSyscalls...)
	names = append(names, condDeniedSyscalls...)

	policy := seccompbpf.Policy{
		DefaultAction: seccompbpf.ActionAllow,
		Syscalls: []seccompbpf.SyscallGroup{
			{
				Names:  names,
				Action: seccompbpf.ActionErrno,
			},
		},
	}

	if _, err := policy.Assemble(); err != nil {
		return fmt.Errorf("%w: seccomp program assembly failed: %v", ErrSandboxUnsupported, err)
	}

	return nil
}

// IsAvailable reports whether both restriction mechanisms can be enforced
// on this system. A false answer means sandboxed Execute calls will fail
// with ExecutionError rather than run unprotected.
func IsAvailable() bool {
	return probeLandlock() == nil && probeSeccomp() == nil
}

// Describe returns a one-line human-readable summary of sandbox support,
// for diagnostics.
func Describe() string {
	abi := landlockABI()
	if abi < 1 {
		return fmt.Sprintf("landlock: unavailable, seccomp: %s, arch: %s", seccompStatus(), runtime.GOARCH)
	}
	return fmt.Sprintf("landlock: ABI v%d, seccomp: %s, arch: %s", abi, seccompStatus(), runtime.GOARCH)
}

func seccompStatus() string {
	if err := probeSeccomp(); err != nil {
		return "unavailable"
	}
	return "available"
}
