package printing

// Select picks the printing to price from every known printing of a card.
//
// With excludeSpecial, printings with any visual variant or the promo-pack tag are
// dropped first. The lowest positive catalog price wins; when no printing has one,
// the first printing in catalog order is returned.
func Select(printings []Printing, excludeSpecial bool) (Printing, error) {
	if len(printings) == 0 {
		return Printing{}, ErrCatalogNotFound
	}

	eligible := printings
	if excludeSpecial {
		eligible = make([]Printing, 0, len(printings))
		for _, p := range printings {
			if !IsSpecial(p) {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			return Printing{}, ErrNoStandardPrintings
		}
	}

	best := -1
	for i, p := range eligible {
		if !p.HasPrice() {
			continue
		}
		if best < 0 || *p.CatalogPrice < *eligible[best].CatalogPrice {
			best = i
		}
	}
	if best < 0 {
		return eligible[0], nil
	}
	return eligible[best], nil
}
