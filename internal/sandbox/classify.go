package sandbox

import "strings"

// sigsysExitCode is the wait status of a process killed by SIGSYS
// (128 + 31), the signal seccomp delivers on a trapped syscall.
const sigsysExitCode = 159

// denialKeywords are output fragments that strongly suggest the failure
// came from sandbox enforcement rather than the command itself.
var denialKeywords = []string{
	"operation not permitted",
	"permission denied",
	"read-only file system",
	"seccomp",
	"sandbox",
	"landlock",
	"failed to write file",
}

// quickRejectExitCodes are exit codes that commands produce for their own
// reasons (usage errors, command not found) far more often than sandboxing
// does. They only reject when no denial keyword matched: a dash redirection
// failure exits 2 yet still prints "Permission denied".
var quickRejectExitCodes = map[int]bool{
	2:   true, // misuse of shell builtins / argparse errors
	126: true, // found but not executable
	127: true, // command not found
}

// likelySandboxDenial decides whether a nonzero exit from a sandboxed
// command should be attributed to the sandbox. A SIGSYS death is definitive,
// then a case-insensitive keyword scan of the combined output, then the
// quick-reject codes. Callers must not invoke this for unsandboxed runs.
func likelySandboxDenial(exitCode int, output string) bool {
	if exitCode == sigsysExitCode {
		return true
	}

	lower := strings.ToLower(output)
	for _, kw := range denialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	if quickRejectExitCodes[exitCode] {
		return false
	}

	// Nonzero exit with no denial signal at all.
	return false
}
