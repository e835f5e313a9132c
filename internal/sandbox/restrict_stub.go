//go:build !linux

package sandbox

import "fmt"

// Landlock and seccomp are Linux-only; on other systems every sandboxed
// operation reports ErrSandboxUnsupported up front.

func ApplyNetworkFilter() error {
	return fmt.Errorf("%w: seccomp requires Linux", ErrSandboxUnsupported)
}

func ApplyFilesystemRules(writableRoots []string) error {
	return fmt.Errorf("%w: landlock requires Linux", ErrSandboxUnsupported)
}

func IsAvailable() bool { return false }

func Describe() string { return "sandbox unavailable: requires Linux" }
