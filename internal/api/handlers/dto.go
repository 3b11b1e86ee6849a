package handlers

import (
	"errors"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/pricing"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// Row error codes sent to clients.
const (
	CodeCatalogNotFound     = "catalog-not-found"
	CodeNoStandardPrintings = "no-standard-printings"
	CodeNoPrices            = "no-prices"
	CodeError               = "error"
)

// PrintingView is the JSON form of a printing.
type PrintingView struct {
	Name            string   `json:"name"`
	SetCode         string   `json:"set_code"`
	SetName         string   `json:"set_name"`
	CollectorNumber string   `json:"collector_number"`
	Variant         string   `json:"variant"`
	PromoTypes      []string `json:"promo_types,omitempty"`
	CatalogPriceUSD *float64 `json:"catalog_price_usd,omitempty"`
}

// RowView is the JSON form of one evaluated deck line.
type RowView struct {
	Quantity       int                        `json:"quantity"`
	Name           string                     `json:"name"`
	Printing       *PrintingView              `json:"printing,omitempty"`
	Quotes         []stores.Quote             `json:"quotes"`
	Cheapest       *stores.Quote              `json:"cheapest,omitempty"`
	ReferencePrice *float64                   `json:"reference_price_cad,omitempty"`
	Contributions  map[stores.StoreID]float64 `json:"contributions"`
	Error          string                     `json:"error,omitempty"`
	Code           string                     `json:"code,omitempty"`
	Suggestion     string                     `json:"suggestion,omitempty"`
}

// StoreView describes a configured store.
type StoreView struct {
	ID       stores.StoreID `json:"id"`
	Name     string         `json:"name"`
	Currency string         `json:"currency"`
}

// ReportView is the JSON form of a deck evaluation.
type ReportView struct {
	ID            string                     `json:"id"`
	Stores        []StoreView                `json:"stores"`
	Rows          []RowView                  `json:"rows"`
	Totals        map[stores.StoreID]float64 `json:"totals"`
	CheapestTotal float64                    `json:"cheapest_total"`
	Cancelled     bool                       `json:"cancelled,omitempty"`
}

// NewPrintingView projects a printing.
func NewPrintingView(p printing.Printing) PrintingView {
	return PrintingView{
		Name:            p.Name,
		SetCode:         p.SetCode,
		SetName:         p.SetName,
		CollectorNumber: p.CollectorNumber,
		Variant:         printing.DetectVariant(p).String(),
		PromoTypes:      p.PromoTypes,
		CatalogPriceUSD: p.CatalogPrice,
	}
}

// ErrorCode classifies a row error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, printing.ErrCatalogNotFound):
		return CodeCatalogNotFound
	case errors.Is(err, printing.ErrNoStandardPrintings):
		return CodeNoStandardPrintings
	case errors.Is(err, pricing.ErrAggregateNoPrices):
		return CodeNoPrices
	default:
		return CodeError
	}
}

// NewRowView projects one evaluation.
func NewRowView(e deck.Evaluation) RowView {
	row := RowView{
		Quantity:       e.Line.Quantity,
		Name:           e.Line.Name,
		Quotes:         e.Quotes,
		Cheapest:       e.Cheapest,
		ReferencePrice: e.ReferencePrice,
		Contributions:  e.Contributions,
		Code:           ErrorCode(e.Err),
		Suggestion:     e.Suggestion,
	}
	if row.Quotes == nil {
		row.Quotes = []stores.Quote{}
	}
	if row.Contributions == nil {
		row.Contributions = map[stores.StoreID]float64{}
	}
	if e.Printing != nil {
		pv := NewPrintingView(*e.Printing)
		row.Printing = &pv
	}
	if e.Err != nil {
		row.Error = e.Err.Error()
	}
	return row
}

// NewReportView projects a deck report.
func NewReportView(r deck.Report) ReportView {
	view := ReportView{
		ID:            r.ID,
		Stores:        make([]StoreView, 0, len(r.Stores)),
		Rows:          make([]RowView, 0, len(r.Rows)),
		Totals:        r.Totals,
		CheapestTotal: r.CheapestTotal,
		Cancelled:     r.Cancelled,
	}
	for _, id := range r.Stores {
		s, ok := stores.Lookup(id)
		if !ok {
			continue
		}
		view.Stores = append(view.Stores, StoreView{ID: s.ID, Name: s.Name, Currency: s.Currency})
	}
	for _, e := range r.Rows {
		view.Rows = append(view.Rows, NewRowView(e))
	}
	return view
}
