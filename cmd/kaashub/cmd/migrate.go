package cmd

import (
	"context"

	"github.com/nfrund/kaashub/internal/app"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		a := app.New(cmd.Context(), cfg)
		defer a.Close(context.Background())
		return a.Migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
