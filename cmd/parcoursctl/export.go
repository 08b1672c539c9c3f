package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/parcours/tracker"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export OUT.csv",
		Short: "Export the full change history as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *tracker.Service) error {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				if err := svc.ExportHistoryCSV(cmd.Context(), f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Printf("Exported history to %s\n", args[0])
				return nil
			})
		},
	}
}
