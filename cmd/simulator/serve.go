package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fystack/lottery-simulator/internal/api"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the dream relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if port == 0 {
				port = a.cfg.Server.Port
			}
			handler := api.Router(a.cfg.Server, api.NewHandler(a.session, version, api.WithDreamStats(a.interpreter)), a.interpreter)

			logger.Info("Simulator is running... Press Ctrl+C to stop", "port", port)
			return api.Serve(ctx, port, handler)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Override the configured HTTP port")
	return cmd
}
