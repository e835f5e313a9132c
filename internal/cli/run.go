package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shellbox/internal/sandbox"
	"shellbox/pkg/logger"
)

// exitCodeTimeout mirrors the conventional timeout(1) exit code.
const exitCodeTimeout = 124

var (
	flagMode          string
	flagCwd           string
	flagWritableRoots []string
	flagTimeout       time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command>",
	Short: "Run a shell command under the sandbox",
	Long: `Run executes the given command with /bin/sh -c under the selected
sandbox mode. Multiple arguments are joined with spaces into a single
shell command.

Exit codes: the command's own exit code on completion, 124 on timeout,
1 on launcher failure.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

func init() {
	runCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "sandbox mode: danger-full-access, read-only, workspace-write")
	runCmd.Flags().StringVar(&flagCwd, "cwd", "", "working directory for the command (default: current directory)")
	runCmd.Flags().StringArrayVar(&flagWritableRoots, "writable-root", nil, "extra writable directory root (repeatable, workspace-write only)")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "kill the command after this duration (default from config)")

	rootCmd.AddCommand(runCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	modeName := flagMode
	if modeName == "" {
		modeName = cfg.Sandbox.DefaultMode
	}
	mode, err := sandbox.ParseSandboxMode(modeName)
	if err != nil {
		return err
	}

	cwd := flagCwd
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
	}

	timeout := flagTimeout
	if timeout == 0 {
		timeout = cfg.Exec.Timeout
	}

	policy := sandbox.Policy{
		Mode:          mode,
		WorkingDir:    cwd,
		WritableRoots: append(append([]string{}, cfg.Sandbox.WritableRoots...), flagWritableRoots...),
	}

	launcher := sandbox.NewLauncher(
		sandbox.LauncherConfig{MaxOutputBytes: cfg.Exec.MaxOutputBytes},
		logger.WithField("cmd", "run"),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result, err := launcher.Execute(ctx, strings.Join(args, " "), policy)
	if result != nil {
		fmt.Fprint(os.Stdout, result.Stdout)
		fmt.Fprint(os.Stderr, result.Stderr)
		if result.Truncated {
			fmt.Fprintln(os.Stderr, "shellbox: output truncated")
		}
	}
	if err == nil {
		return nil
	}

	var (
		denied *sandbox.PolicyDeniedError
		failed *sandbox.CommandFailedError
	)
	switch {
	case errors.As(err, &denied):
		fmt.Fprintf(os.Stderr, "shellbox: %v\n", denied)
		exit(denied.ExitCode)
	case errors.As(err, &failed):
		exit(failed.ExitCode)
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintln(os.Stderr, "shellbox: command timed out")
		exit(exitCodeTimeout)
	}

	return err
}

// exit terminates with the command's exit code.
func exit(code int) {
	if code == 0 {
		code = 1
	}
	os.Exit(code)
}
