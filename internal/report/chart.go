package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string // e.g. "900px"
	Height   string
	Theme    string
	Colors   []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:    "Deck cost by store",
		Subtitle: "CAD",
		Width:    "900px",
		Height:   "500px",
		Theme:    "light",
		Colors:   []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666"},
	}
}

// RenderStoreTotals writes an HTML bar chart of the per-store deck totals,
// with a final bar for the cheapest mix across stores.
func RenderStoreTotals(w io.Writer, r deck.Report, config ChartConfig) error {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	)

	xLabels := make([]string, 0, len(r.Stores)+1)
	yData := make([]opts.BarData, 0, len(r.Stores)+1)
	for _, id := range r.Stores {
		xLabels = append(xLabels, storeName(id))
		yData = append(yData, opts.BarData{Value: roundCents(r.Totals[id])})
	}
	xLabels = append(xLabels, "Cheapest mix")
	yData = append(yData, opts.BarData{Value: roundCents(r.CheapestTotal)})

	bar.SetXAxis(xLabels).
		AddSeries("Total", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteStoreTotalsChart renders the totals chart to an HTML file.
func WriteStoreTotalsChart(r deck.Report, config ChartConfig, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return RenderStoreTotals(f, r, config)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
