package sandbox

import "testing"

func TestLikelySandboxDenial(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		output   string
		want     bool
	}{
		{"sigsys is definitive", 159, "", true},
		{"sigsys wins over quiet output", 159, "no keywords here", true},
		{"permission denied", 1, "bash: /etc/passwd: Permission denied", true},
		{"operation not permitted", 1, "curl: (7) Operation not permitted", true},
		{"read-only fs", 1, "touch: cannot touch 'x': Read-only file system", true},
		{"landlock mention", 1, "landlock blocked the write", true},
		{"seccomp mention", 1, "seccomp violation", true},
		{"sandbox mention", 1, "running in a sandbox", true},
		{"failed to write file", 1, "error: Failed to write file config.json", true},
		{"case insensitive", 1, "PERMISSION DENIED", true},
		{"plain failure", 1, "assertion failed: expected 4 got 5", false},
		{"keyword beats quick reject", 2, "sh: 1: cannot create /etc/out.txt: Permission denied", true},
		{"denied exec beats quick reject", 126, "sh: ./tool: Permission denied", true},
		{"usage error quick reject", 2, "unknown option --frobnicate", false},
		{"not executable quick reject", 126, "cannot execute binary file", false},
		{"command not found quick reject", 127, "sh: nosuchcmd: command not found", false},
		{"empty output", 1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := likelySandboxDenial(tt.exitCode, tt.output); got != tt.want {
				t.Errorf("likelySandboxDenial(%d, %q) = %v, want %v", tt.exitCode, tt.output, got, tt.want)
			}
		})
	}
}
