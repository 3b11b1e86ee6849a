// Package report renders deck evaluations as terminal tables and HTML charts.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// FormatPrice renders a CAD amount.
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// QuoteCell renders one store's quote: the price, or the error kind.
func QuoteCell(q stores.Quote) string {
	if q.Priced() {
		return FormatPrice(*q.Price)
	}
	if q.Kind == stores.KindNone {
		return "-"
	}
	return string(q.Kind)
}

// RowError renders a row's error for display.
func RowError(row deck.Evaluation) string {
	switch {
	case row.Err == nil:
		return ""
	case errors.Is(row.Err, printing.ErrCatalogNotFound):
		if row.Suggestion != "" {
			return fmt.Sprintf("not found (did you mean %q?)", row.Suggestion)
		}
		return "not found"
	case errors.Is(row.Err, printing.ErrNoStandardPrintings):
		return "no standard printings"
	default:
		return row.Err.Error()
	}
}

func storeName(id stores.StoreID) string {
	if s, ok := stores.Lookup(id); ok {
		return s.Name
	}
	return string(id)
}

// tableStyle is StyleRounded with header and footer text left as written,
// so store names keep their casing.
func tableStyle() table.Style {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	return style
}

// WriteDeckTable writes one row per evaluated line plus a totals footer.
func WriteDeckTable(w io.Writer, r deck.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{"Qty", "Card", "Set"}
	for _, id := range r.Stores {
		header = append(header, storeName(id))
	}
	header = append(header, "Cheapest", "Notes")
	t.AppendHeader(header)

	for _, row := range r.Rows {
		set := ""
		if row.Printing != nil {
			set = fmt.Sprintf("%s #%s", row.Printing.SetCode, row.Printing.CollectorNumber)
		}
		cells := table.Row{row.Line.Quantity, row.Line.Name, set}
		for _, id := range r.Stores {
			cell := ""
			for _, q := range row.Quotes {
				if q.Store == id {
					cell = QuoteCell(q)
					break
				}
			}
			cells = append(cells, cell)
		}
		cheapest := ""
		if row.Cheapest != nil {
			cheapest = fmt.Sprintf("%s (%s)", FormatPrice(*row.Cheapest.Price), storeName(row.Cheapest.Store))
		}
		cells = append(cells, cheapest, RowError(row))
		t.AppendRow(cells)
	}

	footer := table.Row{"", "Total", ""}
	for _, id := range r.Stores {
		footer = append(footer, FormatPrice(r.Totals[id]))
	}
	footer = append(footer, FormatPrice(r.CheapestTotal), "")
	t.AppendFooter(footer)

	alignRight := make([]table.ColumnConfig, 0, len(r.Stores))
	for i := range r.Stores {
		alignRight = append(alignRight, table.ColumnConfig{Number: 4 + i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(alignRight)

	t.SetStyle(tableStyle())
	t.Render()
}

// WriteCardTable writes the per-store quotes for a single card.
func WriteCardTable(w io.Writer, row deck.Evaluation) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Store", "Price", "Attempts", "URL"})

	for _, q := range row.Quotes {
		marker := ""
		if row.Cheapest != nil && row.Cheapest.Store == q.Store {
			marker = " *"
		}
		t.AppendRow(table.Row{storeName(q.Store) + marker, QuoteCell(q), q.Attempts, q.URL})
	}

	if row.Printing != nil {
		caption := fmt.Sprintf("%s, %s #%s (%s)", row.Printing.Name, row.Printing.SetName,
			row.Printing.CollectorNumber, printing.DetectVariant(*row.Printing))
		if row.ReferencePrice != nil {
			caption += ", catalog " + FormatPrice(*row.ReferencePrice)
		}
		t.SetCaption(caption)
	}
	if msg := RowError(row); msg != "" {
		t.AppendFooter(table.Row{"", msg, "", ""})
	}

	t.SetStyle(tableStyle())
	t.Render()
}
