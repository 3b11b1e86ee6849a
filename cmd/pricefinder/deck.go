package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/export"
	"github.com/ramonehamilton/mtg-price-finder/internal/report"
)

type deckOptions struct {
	watch             bool
	chart             string
	exportPath        string
	includeBasicLands bool
	excludeSpecial    bool
}

func newDeckCmd(root *rootOptions) *cobra.Command {
	opts := &deckOptions{}

	cmd := &cobra.Command{
		Use:   "deck <file|->",
		Short: "Prices a deck list, one card per line.",
		Args:  cobra.ExactArgs(1),
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

			evalOpts := a.deckOptions()
			if cmd.Flags().Changed("include-basic-lands") {
				evalOpts.ExcludeBasicLands = !opts.includeBasicLands
			}
			if cmd.Flags().Changed("exclude-special") {
				evalOpts.ExcludeSpecial = opts.excludeSpecial
			}

			out := cmd.OutOrStdout()
			run := func(lines []deck.Line) error {
				r := a.orchestrator.Evaluate(cmd.Context(), lines, evalOpts)
				report.WriteDeckTable(out, r)
				if opts.chart != "" {
					if err := report.WriteStoreTotalsChart(r, report.DefaultChartConfig(), opts.chart); err != nil {
						return err
					}
					fmt.Fprintf(out, "Chart written to %s\n", opts.chart)
				}
				if opts.exportPath != "" {
					format, err := export.FormatFromPath(opts.exportPath)
					if err != nil {
						return err
					}
					exporter := export.NewExporter(export.Options{
						Format:     format,
						FilePath:   opts.exportPath,
						PrettyJSON: true,
						Overwrite:  true,
					})
					if err := exporter.Export(export.FromReport(r)); err != nil {
						return err
					}
					fmt.Fprintf(out, "Report exported to %s\n", opts.exportPath)
				}
				return nil
			}

			if opts.watch {
				if args[0] == "-" {
					return fmt.Errorf("--watch needs a file, not stdin")
				}
				fmt.Fprintf(out, "Watching %s, press Ctrl+C to stop\n", args[0])
				return deck.WatchFile(cmd.Context(), args[0], 0, func(lines []deck.Line) {
					if err := run(lines); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), err)
					}
				})
			}

			text, err := readDeck(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return run(deck.Parse(text))
		},
	}

	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-price the deck whenever the file changes")
	cmd.Flags().StringVar(&opts.chart, "chart", "", "write an HTML chart of store totals to this path")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write the report to a .csv or .json file")
	cmd.Flags().BoolVar(&opts.includeBasicLands, "include-basic-lands", false, "price basic lands too")
	cmd.Flags().BoolVar(&opts.excludeSpecial, "exclude-special", false, "skip showcase, borderless and other special printings")
	return cmd
}

func readDeck(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read deck list: %w", err)
	}
	return string(data), nil
}
