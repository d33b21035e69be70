package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/vaultflow/service/httpapi"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the approval API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, logger, closer, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closer()
			if addr == "" {
				addr = srv.Config().HTTP.Addr
			}
			server := httpapi.NewServer(srv, addr,
				httpapi.WithLogger(logger),
				httpapi.WithDispatchTimeout(srv.Config().Dispatch.Timeout()))

			serverErr := make(chan error, 1)
			go func() {
				serverErr <- server.Start()
			}()
			select {
			case <-ctx.Done():
				logger.Info().Msg("shutting down http api")
			case err := <-serverErr:
				return err
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "", "listen address, overrides config")
	return cmd
}
