package cmd

import (
	"os"

	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kaashub",
	Short: "KaasHub web application",
	Long: `KaasHub serves the login, dashboard and profile pages.

Available commands:
  serve      Run the HTTP server
  migrate    Apply the database schema
  version    Print the version

Use "kaashub [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		logging.New()
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
