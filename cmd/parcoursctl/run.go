package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/parcours/tracker"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [firm]",
		Short: "Check every tracked profile and record changes",
		Long:  "Fetches each tracked profile page in turn, compares it against the stored snapshot and records any title or company change. An optional firm argument restricts the run to people at that firm.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			firm := ""
			if len(args) == 1 {
				firm = args[0]
			}
			return withService(cmd.Context(), func(svc *tracker.Service) error {
				sum, err := svc.Refresh(cmd.Context(), firm)
				if err != nil {
					return err
				}
				for _, line := range sum.Lines {
					fmt.Println(line)
				}
				fmt.Println(sum.String())
				return nil
			})
		},
	}
}
