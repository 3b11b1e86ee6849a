package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/report"
)

func newPriceCmd(root *rootOptions) *cobra.Command {
	var excludeSpecial bool

	cmd := &cobra.Command{
		Use:   "price <card name>",
		Short: "Prints every store's price for one card.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("exclude-special") {
				excludeSpecial = cfg.Deck.ExcludeSpecial
			}

			line := deck.Line{Quantity: 1, Name: strings.Join(args, " ")}
			row := a.orchestrator.EvaluateLine(cmd.Context(), line, excludeSpecial)
			report.WriteCardTable(cmd.OutOrStdout(), row)
			return nil
		},
	}
	cmd.Flags().BoolVar(&excludeSpecial, "exclude-special", false, "skip showcase, borderless and other special printings")
	return cmd
}
