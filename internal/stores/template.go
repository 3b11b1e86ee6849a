package stores

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
)

// Field names one identity component a template can place in a product path.
type Field int

const (
	FieldNameSlug Field = iota
	FieldFullNameSlug
	FieldSetNameSlug
	FieldSetCode
	FieldCollectorNumber
	FieldVariant
	FieldPromoPack
)

func (f Field) String() string {
	switch f {
	case FieldNameSlug:
		return "name"
	case FieldFullNameSlug:
		return "full-name"
	case FieldSetNameSlug:
		return "set-name"
	case FieldSetCode:
		return "set-code"
	case FieldCollectorNumber:
		return "collector-number"
	case FieldVariant:
		return "variant"
	case FieldPromoPack:
		return "promo-pack"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// promoPackToken is the URL token every store uses for promo-pack printings.
const promoPackToken = "promo-pack"

// Template is a store's declarative product-path layout. Fields within a segment
// are joined by "-", segments by "/". Empty components are skipped.
type Template struct {
	Prefix   string
	Segments [][]Field
	Suffix   string
	Required []Field
}

// Build renders the product path for id at the given store.
func (t Template) Build(id printing.Identity, store StoreID) (string, error) {
	for _, f := range t.Required {
		if value(f, id, store) == "" {
			return "", fmt.Errorf("%w: %s requires %s", ErrMalformedIdentity, store, f)
		}
	}

	segments := make([]string, 0, len(t.Segments))
	for _, fields := range t.Segments {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if v := value(f, id, store); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			segments = append(segments, strings.Join(parts, "-"))
		}
	}

	return t.Prefix + strings.Join(segments, "/") + t.Suffix, nil
}

func value(f Field, id printing.Identity, store StoreID) string {
	switch f {
	case FieldNameSlug:
		return id.NameSlug
	case FieldFullNameSlug:
		return id.FullNameSlug
	case FieldSetNameSlug:
		return id.SetNameSlug
	case FieldSetCode:
		return printing.Slugify(id.SetCode)
	case FieldCollectorNumber:
		return printing.Slugify(id.CollectorNumber)
	case FieldVariant:
		return NormalizeVariant(id.Variant, store)
	case FieldPromoPack:
		if id.PromoPack {
			return promoPackToken
		}
	}
	return ""
}
