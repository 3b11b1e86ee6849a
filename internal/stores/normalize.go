package stores

import "github.com/ramonehamilton/mtg-price-finder/internal/printing"

// variantTokens lists the per-store overrides. Pairs not listed use the descriptor
// itself as the token.
var variantTokens = map[StoreID]map[printing.Variant]string{
	FaceToFace: {
		printing.VariantRetro:       "retro-frame",
		printing.VariantFutureFrame: "future-sight-frame",
	},
	FourOhOne: {
		printing.VariantRetro:       "retro-frame",
		printing.VariantFutureFrame: "timeshifted",
	},
	WizardsTower: {
		printing.VariantFutureFrame: "",
		printing.VariantWhiteBorder: "",
	},
}

// NormalizeVariant maps a variant descriptor to the store's URL token.
// An empty token means the store's URL carries no variant component.
func NormalizeVariant(v printing.Variant, id StoreID) string {
	if tokens, ok := variantTokens[id]; ok {
		if token, ok := tokens[v]; ok {
			return token
		}
	}
	return string(v)
}
