package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/video-system/go-hwscan/internal/report"
	"github.com/video-system/go-hwscan/pkg/api"
	"github.com/video-system/go-hwscan/pkg/hwscan"
)

func newServeCmd(a *app) *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached scan results over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, closeLib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			cache := hwscan.NewCache(a.newScanner(lib), a.cfg.Cache.TTL,
				hwscan.WithCacheLogger(a.log.Named("cache")))

			// Setup graceful shutdown
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if warm {
				devices, err := cache.Devices(ctx)
				if err != nil {
					a.log.Warn("initial scan failed", zap.Error(err))
				} else if client := a.platformClient(); client.IsConfigured() {
					r := report.New(ctx, devices, cache.FetchedAt())
					if _, err := client.PublishCapabilities(ctx, r); err != nil {
						a.log.Warn("publish capabilities", zap.Error(err))
					}
				}
			}

			server := api.NewServer(api.ServerConfig{
				Host:    a.cfg.API.Host,
				Port:    a.cfg.API.Port,
				Devices: cache,
				Logger:  a.log.Named("api"),
				Version: version,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case <-ctx.Done():
				a.log.Info("shutdown signal received")
			case err := <-errCh:
				return err
			}

			server.Stop()
			a.log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", true, "Scan once before accepting requests")
	return cmd
}
