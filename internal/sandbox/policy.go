package sandbox

import (
	"fmt"
	"path/filepath"
)

// SandboxMode selects how much of the system a command may touch.
type SandboxMode int

const (
	// ModeDangerFullAccess runs the command with no restrictions at all.
	ModeDangerFullAccess SandboxMode = iota
	// ModeReadOnly allows reading the whole filesystem but no writes and
	// no network.
	ModeReadOnly
	// ModeWorkspaceWrite additionally allows writes under a set of
	// directory roots. Network stays blocked.
	ModeWorkspaceWrite
)

func (m SandboxMode) String() string {
	switch m {
	case ModeDangerFullAccess:
		return "danger-full-access"
	case ModeReadOnly:
		return "read-only"
	case ModeWorkspaceWrite:
		return "workspace-write"
	default:
		return "unknown"
	}
}

// ParseSandboxMode converts a mode name to a SandboxMode.
func ParseSandboxMode(s string) (SandboxMode, error) {
	switch s {
	case "danger-full-access":
		return ModeDangerFullAccess, nil
	case "read-only":
		return ModeReadOnly, nil
	case "workspace-write":
		return ModeWorkspaceWrite, nil
	default:
		return ModeReadOnly, fmt.Errorf("unknown sandbox mode: %q", s)
	}
}

// Policy describes the isolation applied to a single command execution.
type Policy struct {
	Mode SandboxMode

	// WorkingDir is the directory the command starts in. Must be absolute.
	WorkingDir string

	// WritableRoots are extra directory roots writable under
	// ModeWorkspaceWrite. Ignored in the other modes.
	WritableRoots []string
}

// Validate checks that the policy paths are usable.
func (p Policy) Validate() error {
	if p.WorkingDir == "" {
		return fmt.Errorf("policy working directory is empty")
	}
	if !filepath.IsAbs(p.WorkingDir) {
		return fmt.Errorf("policy working directory must be absolute: %s", p.WorkingDir)
	}
	for _, root := range p.WritableRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("writable root must be absolute: %s", root)
		}
	}
	return nil
}

// EffectiveWritableRoots returns the full writable set for
// ModeWorkspaceWrite: the configured roots plus the working directory and
// the temp directories, deduplicated, in first-seen order. Empty for the
// other modes.
func (p Policy) EffectiveWritableRoots() []string {
	if p.Mode != ModeWorkspaceWrite {
		return nil
	}

	candidates := make([]string, 0, len(p.WritableRoots)+3)
	candidates = append(candidates, p.WritableRoots...)
	candidates = append(candidates, p.WorkingDir, "/tmp", "/var/tmp")

	seen := make(map[string]bool, len(candidates))
	roots := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = filepath.Clean(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		roots = append(roots, c)
	}
	return roots
}

// NetworkDisabled reports whether the policy blocks network syscalls.
func (p Policy) NetworkDisabled() bool {
	return p.Mode != ModeDangerFullAccess
}
