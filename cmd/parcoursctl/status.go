package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/parcours/tracker"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [firm]",
		Short: "Show the current snapshot of every tracked person",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			firm := ""
			if len(args) == 1 {
				firm = args[0]
			}
			return withService(cmd.Context(), func(svc *tracker.Service) error {
				people, err := svc.People(cmd.Context(), firm)
				if err != nil {
					return err
				}
				if len(people) == 0 {
					fmt.Println("No tracked people.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tFIRM\tTITLE\tCOMPANY\tLAST SEEN\tID")
				for _, p := range people {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						p.Name, cell(p.Firm), cell(p.LastTitle),
						cell(p.LastCompany), cellOr(p.LastSeen, "never"), p.ID)
				}
				return w.Flush()
			})
		},
	}
}

func cell(p *string) string {
	return cellOr(p, "-")
}

func cellOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
