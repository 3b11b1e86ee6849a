package printing

import "fmt"

// Variant is the store-agnostic classification of a printing's visual treatment.
type Variant string

const (
	VariantNone        Variant = ""
	VariantBorderless  Variant = "borderless"
	VariantExtendedArt Variant = "extended-art"
	VariantShowcase    Variant = "showcase"
	VariantRetro       Variant = "retro"
	VariantFutureFrame Variant = "future-frame"
	VariantWhiteBorder Variant = "white-border"
)

// String returns "none" for VariantNone so logs stay readable.
func (v Variant) String() string {
	if v == VariantNone {
		return "none"
	}
	return string(v)
}

// frameEffectVariants maps Scryfall frame effects to variants.
var frameEffectVariants = map[string]Variant{
	"showcase":    VariantShowcase,
	"extendedart": VariantExtendedArt,
	"borderless":  VariantBorderless,
}

// DetectVariant classifies a printing. Frame era and border special cases win over
// frame effects, and only the first listed frame effect is consulted.
func DetectVariant(p Printing) Variant {
	switch {
	case p.Frame == "future":
		return VariantFutureFrame
	case p.Frame == "1993" || p.Frame == "1997":
		return VariantRetro
	case p.BorderColor == "white":
		return VariantWhiteBorder
	}

	if len(p.FrameEffects) > 0 {
		if v, ok := frameEffectVariants[p.FrameEffects[0]]; ok {
			return v
		}
	}

	if p.BorderColor == "borderless" {
		return VariantBorderless
	}

	return VariantNone
}

// IsSpecial reports whether the printing is excluded by the "standard printings only" filter.
func IsSpecial(p Printing) bool {
	return DetectVariant(p) != VariantNone || p.IsPromoPack()
}

// Variants lists every non-none variant.
var Variants = []Variant{
	VariantBorderless,
	VariantExtendedArt,
	VariantShowcase,
	VariantRetro,
	VariantFutureFrame,
	VariantWhiteBorder,
}

// ParseVariant parses a variant name. "", "-" and "none" are VariantNone.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "-", "none":
		return VariantNone, nil
	}
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return VariantNone, fmt.Errorf("unknown variant %q", s)
}
