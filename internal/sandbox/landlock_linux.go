//go:build linux

package sandbox

import (
	"fmt"

	"github.com/landlock-lsm/go-landlock/landlock"
	"golang.org/x/sys/unix"
)

// landlockABI returns the Landlock ABI version supported by the running
// kernel, or 0 when Landlock is unavailable or disabled.
func landlockABI() int {
	v, err := unix.LandlockCreateRuleset(nil, unix.LANDLOCK_CREATE_RULESET_VERSION)
	if err != nil {
		return 0
	}
	return v
}

// ApplyFilesystemRules restricts the calling process to read-only access
// everywhere, read-write under the given roots, and read-write on
// /dev/null. Irreversible. The kernel must support Landlock ABI v1 or
// later; newer capability groups degrade best-effort to what the kernel
// offers.
func ApplyFilesystemRules(writableRoots []string) error {
	if landlockABI() < 1 {
		return fmt.Errorf("%w: kernel lacks Landlock support", ErrSandboxUnsupported)
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("failed to set no-new-privs: %w", err)
	}

	rules := []landlock.Rule{
		landlock.RODirs("/"),
		landlock.RWFiles("/dev/null"),
	}
	if len(writableRoots) > 0 {
		rules = append(rules, landlock.RWDirs(writableRoots...))
	}

	if err := landlock.V5.BestEffort().RestrictPaths(rules...); err != nil {
		return fmt.Errorf("failed to apply landlock rules: %w", err)
	}

	return nil
}
