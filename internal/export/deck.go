package export

import (
	"errors"
	"strconv"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// DeckRow is one exported deck line.
type DeckRow struct {
	Quantity        int                         `json:"quantity"`
	Name            string                      `json:"name"`
	SetCode         string                      `json:"set_code,omitempty"`
	SetName         string                      `json:"set_name,omitempty"`
	CollectorNumber string                      `json:"collector_number,omitempty"`
	Prices          map[stores.StoreID]*float64 `json:"prices"`
	CheapestStore   stores.StoreID              `json:"cheapest_store,omitempty"`
	CheapestPrice   *float64                    `json:"cheapest_price,omitempty"`
	ReferencePrice  *float64                    `json:"reference_price,omitempty"`
	Error           string                      `json:"error,omitempty"`
}

// DeckExport is the exported form of a deck evaluation.
type DeckExport struct {
	ID            string                     `json:"id"`
	Stores        []stores.StoreID           `json:"stores"`
	Rows          []DeckRow                  `json:"rows"`
	Totals        map[stores.StoreID]float64 `json:"totals"`
	CheapestTotal float64                    `json:"cheapest_total"`
	Cancelled     bool                       `json:"cancelled"`
}

// FromReport converts an evaluation report.
func FromReport(r deck.Report) *DeckExport {
	d := &DeckExport{
		ID:            r.ID,
		Stores:        r.Stores,
		Rows:          make([]DeckRow, 0, len(r.Rows)),
		Totals:        r.Totals,
		CheapestTotal: r.CheapestTotal,
		Cancelled:     r.Cancelled,
	}
	for _, e := range r.Rows {
		d.Rows = append(d.Rows, newDeckRow(e))
	}
	return d
}

func newDeckRow(e deck.Evaluation) DeckRow {
	row := DeckRow{
		Quantity:       e.Line.Quantity,
		Name:           e.Line.Name,
		Prices:         make(map[stores.StoreID]*float64, len(e.Quotes)),
		ReferencePrice: e.ReferencePrice,
		Error:          errorCode(e.Err),
	}
	if e.Printing != nil {
		row.SetCode = e.Printing.SetCode
		row.SetName = e.Printing.SetName
		row.CollectorNumber = e.Printing.CollectorNumber
	}
	for _, q := range e.Quotes {
		if q.Priced() {
			row.Prices[q.Store] = q.Price
		} else {
			row.Prices[q.Store] = nil
		}
	}
	if e.Cheapest != nil {
		row.CheapestStore = e.Cheapest.Store
		row.CheapestPrice = e.Cheapest.Price
	}
	return row
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, printing.ErrCatalogNotFound):
		return "catalog-not-found"
	case errors.Is(err, printing.ErrNoStandardPrintings):
		return "no-standard-printings"
	default:
		return err.Error()
	}
}

// Header returns the CSV header: fixed columns, then one per store.
func (d *DeckExport) Header() []string {
	header := []string{"Quantity", "Name", "Set", "Number"}
	for _, id := range d.Stores {
		header = append(header, string(id))
	}
	return append(header, "Cheapest Store", "Cheapest Price", "Reference Price", "Error")
}

// Records returns one CSV record per row, then a totals record.
func (d *DeckExport) Records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	for _, row := range d.Rows {
		rec := []string{strconv.Itoa(row.Quantity), row.Name, row.SetCode, row.CollectorNumber}
		for _, id := range d.Stores {
			rec = append(rec, formatAmount(row.Prices[id]))
		}
		rec = append(rec, string(row.CheapestStore), formatAmount(row.CheapestPrice), formatAmount(row.ReferencePrice), row.Error)
		records = append(records, rec)
	}

	total := []string{"", "Total", "", ""}
	for _, id := range d.Stores {
		v := d.Totals[id]
		total = append(total, formatAmount(&v))
	}
	cheapest := d.CheapestTotal
	total = append(total, "", formatAmount(&cheapest), "", "")
	return append(records, total)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
