package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/parcours/tracker"
)

func newAddCmd() *cobra.Command {
	var (
		name string
		firm string
		url  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Track a person under an explicit name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *tracker.Service) error {
				p, err := svc.AddPerson(cmd.Context(), name, firm, url)
				if err != nil {
					return err
				}
				fmt.Printf("[ADDED] %s → %s\n", personLabel(p), p.ProfileURL)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Person name (required)")
	cmd.Flags().StringVar(&firm, "firm", "", "Firm")
	cmd.Flags().StringVar(&url, "url", "", "Public profile URL (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("url")

	return cmd
}

func newAddURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-url URL...",
		Short: "Track profile URLs, detecting names and firms from the pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *tracker.Service) error {
				for _, rawURL := range args {
					p, err := svc.AddFromURL(cmd.Context(), rawURL)
					if err != nil {
						fmt.Printf("[SKIP] %s → %s\n", rawURL, tracker.SkipReason(err))
						continue
					}
					fmt.Printf("[ADDED] %s → %s\n", personLabel(p), p.ProfileURL)
				}
				return nil
			})
		},
	}
}

func personLabel(p *tracker.Person) string {
	if p.Firm != nil {
		return fmt.Sprintf("%s (%s)", p.Name, *p.Firm)
	}
	return p.Name
}
