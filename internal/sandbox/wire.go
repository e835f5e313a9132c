package sandbox

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment protocol between the launcher and the re-executed child.
// The launcher encodes the init spec into SHELLBOX_INIT_* variables; the
// child decodes them, applies the restrictions, scrubs them, and execs.
const (
	// InitEnvVar marks the process as running in sandbox-init mode.
	InitEnvVar = "SHELLBOX_SANDBOX_INIT"

	envInitCommand    = "SHELLBOX_INIT_COMMAND"
	envInitWorkingDir = "SHELLBOX_INIT_WORKING_DIR"
	envInitRootsCount = "SHELLBOX_INIT_ROOTS_COUNT"
	envInitRootPrefix = "SHELLBOX_INIT_ROOT_"
)

// Markers visible to the executed command itself, mirroring what agent
// harnesses expect so tooling can detect it is running sandboxed.
const (
	MarkerSandboxVar   = "SHELLBOX_SANDBOX"
	MarkerSandboxValue = "landlock"

	MarkerNetworkDisabledVar   = "SHELLBOX_SANDBOX_NETWORK_DISABLED"
	MarkerNetworkDisabledValue = "1"
)

// StatusPipeFD is the file descriptor number the child inherits for the
// enforcement status pipe (first ExtraFiles slot after stdio).
const StatusPipeFD = 3

// Status line prefixes written by the child on the status pipe.
const (
	StatusOK                = "ok"
	StatusErrorPrefix       = "error: "
	StatusUnsupportedPrefix = "unsupported: "
)

// InitSpec is everything the child needs to restrict itself and run the
// command. WritableRoots is the already-effective set; the child applies
// it literally.
type InitSpec struct {
	Command       string
	WorkingDir    string
	WritableRoots []string
}

// EncodeEnv renders the init spec as environment variables for the child
// process. Array values use a count plus indexed entries so paths may
// contain any character except NUL.
func (s InitSpec) EncodeEnv() []string {
	env := []string{
		InitEnvVar + "=1",
		envInitCommand + "=" + s.Command,
		envInitWorkingDir + "=" + s.WorkingDir,
		fmt.Sprintf("%s=%d", envInitRootsCount, len(s.WritableRoots)),
	}
	for i, root := range s.WritableRoots {
		env = append(env, fmt.Sprintf("%s%d=%s", envInitRootPrefix, i, root))
	}
	return env
}

// DecodeInitSpecFromEnv reconstructs the init spec inside the child.
func DecodeInitSpecFromEnv() (InitSpec, error) {
	var spec InitSpec

	// An empty command is a valid no-op for sh -c; only an absent
	// variable is a protocol violation.
	command, ok := os.LookupEnv(envInitCommand)
	if !ok {
		return spec, fmt.Errorf("missing %s", envInitCommand)
	}
	spec.Command = command

	spec.WorkingDir = os.Getenv(envInitWorkingDir)
	if spec.WorkingDir == "" {
		return spec, fmt.Errorf("missing %s", envInitWorkingDir)
	}

	countStr := os.Getenv(envInitRootsCount)
	if countStr == "" {
		return spec, fmt.Errorf("missing %s", envInitRootsCount)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return spec, fmt.Errorf("invalid %s: %q", envInitRootsCount, countStr)
	}

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%s%d", envInitRootPrefix, i)
		root, ok := os.LookupEnv(key)
		if !ok {
			return spec, fmt.Errorf("missing %s", key)
		}
		spec.WritableRoots = append(spec.WritableRoots, root)
	}

	return spec, nil
}

// ScrubInitEnv returns env with every SHELLBOX_INIT_* protocol variable
// and the init marker removed. The sandbox markers for the command itself
// are kept.
func ScrubInitEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		if name == InitEnvVar || strings.HasPrefix(name, "SHELLBOX_INIT_") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
