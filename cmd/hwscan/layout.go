package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/video-system/go-hwscan/pkg/hwscan"
	"github.com/video-system/go-hwscan/pkg/native"
)

func newLayoutCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the native record layout, or dump a raw scan result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !dump {
				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("Record", "Field", "Type", "Offset", "Size")
				for _, rec := range native.Host.Records() {
					t.Row(rec.Name, "", "", "", fmt.Sprintf("%d (align %d)", rec.Size, rec.Align))
					for _, f := range rec.Fields {
						t.Row("", f.Name, f.Kind.String(), fmt.Sprint(rec.Off(f.Name)), "")
					}
				}
				_, err := fmt.Fprintln(out, t.Render())
				return err
			}

			lib, closeLib, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			var root uintptr
			if err := hwscan.Status(lib.Scan(&root)).Err(); err != nil {
				return err
			}
			if root == 0 {
				return hwscan.StatusCritical.Err()
			}
			defer lib.Release(root)

			return native.Dump(out, lib.Memory(), native.Host, root)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Scan and print the raw native tree")
	return cmd
}
