package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/video-system/go-hwscan/internal/report"
	"github.com/video-system/go-hwscan/pkg/platform"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Scan once and register the devices with the video platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.platformClient()
			if !client.IsConfigured() {
				return fmt.Errorf("platform.url is not set")
			}
			if err := client.CheckHealth(cmd.Context()); err != nil {
				return fmt.Errorf("platform preflight: %w", err)
			}

			lib, closeLib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			devices, err := a.newScanner(lib).ScanDevices()
			if err != nil {
				return err
			}

			res, err := client.PublishCapabilities(cmd.Context(), report.New(cmd.Context(), devices, time.Now()))
			if err != nil {
				return err
			}

			a.log.Info("capabilities published",
				zap.String("node_id", res.NodeID),
				zap.String("status", res.Status),
				zap.Int("devices", len(devices)))
			return nil
		},
	}
}

func (a *app) platformClient() *platform.Client {
	return platform.New(platform.Config{
		URL:    a.cfg.Platform.URL,
		APIKey: a.cfg.Platform.APIKey,
		NodeID: a.cfg.Platform.NodeID,
	})
}
