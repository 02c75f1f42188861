package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/application/httpapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if addr == "" {
					addr = d.Config.HTTP.Addr
				}

				api := httpapi.New(httpapi.Config{
					Registry:   d.Registry,
					History:    d.History,
					Batch:      d.Batch,
					Computer:   d.Computer,
					Metrics:    d.Metrics.Handler(),
					MassCutoff: d.Config.Snapshot.MassCutoff,
					Logger:     d.Logger,
				})
				srv := &http.Server{
					Addr:              addr,
					Handler:           api.Routes(),
					ReadHeaderTimeout: 5 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					d.Logger.Info("listening", "addr", addr)
					errCh <- srv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return fmt.Errorf("serving: %w", err)
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				d.Logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
