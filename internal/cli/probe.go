package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shellbox/internal/sandbox"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether the sandbox can be enforced on this system",
	Long: `Probe checks kernel Landlock support and seccomp filter assembly
without restricting anything. Exits 0 when the sandbox is enforceable,
1 otherwise.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(sandbox.Describe())
		if sandbox.IsAvailable() {
			fmt.Println("sandbox: available")
			return
		}
		fmt.Println("sandbox: unavailable")
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
