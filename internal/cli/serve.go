package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/garyjia/billed/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bill store API",
		Long:  "Serve the bill store API over the configured local database until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startContainer(cmd, opts, func(cfg *config.Config) {
				if port > 0 {
					cfg.Server.Port = port
				}
			})
			if err != nil {
				return err
			}
			defer shutdown(c)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.Logger().Info("Starting billed server",
				zap.String("version", version),
				zap.String("address", c.Server().Address()))
			return c.Server().Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")
	return cmd
}
