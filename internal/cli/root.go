package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shellbox/pkg/config"
	"shellbox/pkg/logger"
)

var (
	cfg     *config.Config
	cfgPath string

	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "shellbox",
	Short: "Run shell commands under a Landlock/seccomp sandbox",
	Long: `shellbox executes shell commands inside a kernel-enforced sandbox:
Landlock restricts filesystem writes and seccomp-BPF blocks network
syscalls. Restrictions are applied in the child process before exec and
cannot be relaxed afterwards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, err = config.LoadFromFile(flagConfig)
			cfgPath = flagConfig
		} else {
			cfg, cfgPath, err = config.LoadConfig()
		}
		if err != nil {
			return err
		}

		levelName := cfg.Logging.Level
		if flagLogLevel != "" {
			levelName = flagLogLevel
		}
		level, err := logger.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger.SetLevel(level)

		logger.Debug("configuration loaded", "source", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the CLI and exits the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
