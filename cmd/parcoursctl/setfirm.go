package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/parcours/tracker"
)

func newSetFirmCmd() *cobra.Command {
	var (
		id    string
		url   string
		firm  string
		clear bool
	)

	cmd := &cobra.Command{
		Use:   "set-firm",
		Short: "Set or clear the firm of a tracked person",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (id == "") == (url == "") {
				return errors.New("exactly one of --id or --url is required")
			}
			if !clear && firm == "" {
				return errors.New("either --firm or --clear is required")
			}
			if clear {
				firm = ""
			}
			return withService(cmd.Context(), func(svc *tracker.Service) error {
				if id != "" {
					if err := svc.SetFirmByID(cmd.Context(), id, firm); err != nil {
						return err
					}
					fmt.Println("Updated 1 person.")
					return nil
				}
				n, err := svc.SetFirmByURL(cmd.Context(), url, firm)
				if err != nil {
					return err
				}
				fmt.Printf("Updated %d person(s).\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Person ID")
	cmd.Flags().StringVar(&url, "url", "", "Profile URL")
	cmd.Flags().StringVar(&firm, "firm", "", "New firm")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the firm")

	return cmd
}
