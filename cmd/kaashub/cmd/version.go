package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.1.0" // Set at build time with -ldflags "-X github.com/nfrund/kaashub/cmd/kaashub/cmd.version=..."

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of KaasHub",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "KaasHub v%s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
