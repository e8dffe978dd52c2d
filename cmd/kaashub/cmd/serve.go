package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/kaashub/internal/app"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/server"
	"github.com/spf13/cobra"
)

const closeTimeout = 10 * time.Second

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		ctx, stop := server.WithShutdownSignal(cmd.Context())
		defer stop()

		a := app.New(ctx, cfg)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			if err := a.Close(closeCtx); err != nil {
				slog.Error("Shutdown finished with errors", "error", err)
			}
		}()

		if !skipMigrate {
			if err := a.Migrate(ctx); err != nil {
				return err
			}
		}
		return a.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply the schema on startup")
	rootCmd.AddCommand(serveCmd)
}
