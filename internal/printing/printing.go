// Package printing models individual card printings and the store-agnostic
// identity derived from them.
package printing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/mtg-price-finder/internal/cards/scryfall"
)

// CatalogCurrency is the currency of Printing.CatalogPrice.
const CatalogCurrency = "USD"

// PromoPackTag is the Scryfall promo type that marks a promo-pack printing.
const PromoPackTag = "promopack"

// FaceSeparator joins the face names of a multi-faced card.
const FaceSeparator = " // "

var (
	// ErrCatalogNotFound means the card name resolved to no printings at all.
	ErrCatalogNotFound = errors.New("card not found in catalog")

	// ErrNoStandardPrintings means printings exist but every one was filtered out.
	ErrNoStandardPrintings = errors.New("no standard printings")
)

// Printing is one specific print of a card. Values are immutable once built.
type Printing struct {
	ScryfallID      string
	Name            string
	SetCode         string
	SetName         string
	CollectorNumber string

	Frame        string
	FrameEffects []string
	BorderColor  string
	PromoTypes   []string

	// CatalogPrice is the reference price in CatalogCurrency; nil when unknown.
	CatalogPrice *float64
}

// FromScryfall converts a Scryfall card into a Printing.
// Missing, unparsable or non-positive USD prices leave CatalogPrice nil.
func FromScryfall(c scryfall.Card) Printing {
	p := Printing{
		ScryfallID:      c.ID,
		Name:            c.Name,
		SetCode:         c.SetCode,
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		Frame:           c.Frame,
		FrameEffects:    append([]string(nil), c.FrameEffects...),
		BorderColor:     c.BorderColor,
		PromoTypes:      append([]string(nil), c.PromoTypes...),
	}

	if c.Prices.USD != nil {
		if d, err := decimal.NewFromString(*c.Prices.USD); err == nil && d.IsPositive() {
			f := d.InexactFloat64()
			p.CatalogPrice = &f
		}
	}

	return p
}

// FromScryfallList converts a list of Scryfall cards, keeping catalog order.
func FromScryfallList(cards []scryfall.Card) []Printing {
	out := make([]Printing, 0, len(cards))
	for _, c := range cards {
		out = append(out, FromScryfall(c))
	}
	return out
}

// Faces returns the face names of the card; single-faced cards return one entry.
func (p Printing) Faces() []string {
	parts := strings.Split(p.Name, FaceSeparator)
	faces := parts[:0]
	for _, f := range parts {
		if f = strings.TrimSpace(f); f != "" {
			faces = append(faces, f)
		}
	}
	return faces
}

// HasPrice reports whether the printing carries a usable catalog price.
func (p Printing) HasPrice() bool {
	return p.CatalogPrice != nil && *p.CatalogPrice > 0
}

// IsPromoPack reports whether the printing is a promo-pack printing.
// Other promo types (prerelease, beginner box, ...) do not count.
func (p Printing) IsPromoPack() bool {
	for _, t := range p.PromoTypes {
		if t == PromoPackTag {
			return true
		}
	}
	return false
}
