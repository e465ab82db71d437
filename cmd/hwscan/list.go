package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/video-system/go-hwscan/internal/report"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Scan once and print every device and its codecs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, closeLib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			devices, err := a.newScanner(lib).ScanDevices()
			if err != nil {
				return err
			}

			r := report.New(cmd.Context(), devices, time.Now())
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return report.WriteJSON(out, r)
			case asYAML:
				return report.WriteYAML(out, r)
			default:
				return report.WriteTable(out, r)
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}
