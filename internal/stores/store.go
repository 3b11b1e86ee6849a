// Package stores knows how to address a printing at each retail storefront and
// how to read a price back from the storefront's product page.
package stores

import "fmt"

// StoreID identifies a storefront.
type StoreID string

const (
	FaceToFace   StoreID = "facetoface"
	FourOhOne    StoreID = "401games"
	WizardsTower StoreID = "wizardstower"
)

// Declared is the fixed store order. Price ties are broken by this order.
var Declared = []StoreID{FaceToFace, FourOhOne, WizardsTower}

// Store describes a storefront.
type Store struct {
	ID       StoreID
	Name     string
	BaseURL  string
	Currency string
	Template Template
}

var catalog = map[StoreID]Store{
	FaceToFace: {
		ID:       FaceToFace,
		Name:     "Face to Face Games",
		BaseURL:  "https://facetofacegames.com",
		Currency: "CAD",
		Template: Template{
			Prefix:   "/",
			Segments: [][]Field{{FieldNameSlug, FieldVariant, FieldPromoPack, FieldSetNameSlug}},
			Suffix:   "/",
			Required: []Field{FieldNameSlug, FieldSetNameSlug},
		},
	},
	FourOhOne: {
		ID:       FourOhOne,
		Name:     "401 Games",
		BaseURL:  "https://store.401games.ca",
		Currency: "CAD",
		Template: Template{
			Prefix:   "/products/",
			Segments: [][]Field{{FieldFullNameSlug, FieldVariant, FieldPromoPack, FieldSetCode}},
			Required: []Field{FieldFullNameSlug, FieldSetCode},
		},
	},
	WizardsTower: {
		ID:       WizardsTower,
		Name:     "Wizard's Tower",
		BaseURL:  "https://www.kanatacg.com",
		Currency: "CAD",
		Template: Template{
			Prefix:   "/products/magic-",
			Segments: [][]Field{{FieldSetNameSlug}, {FieldNameSlug, FieldVariant, FieldCollectorNumber}},
			Required: []Field{FieldNameSlug, FieldSetNameSlug, FieldCollectorNumber},
		},
	},
}

// Lookup returns the store definition for id.
func Lookup(id StoreID) (Store, bool) {
	s, ok := catalog[id]
	return s, ok
}

// MustStore is Lookup for identifiers that are known at compile time.
// An unknown identifier is a programming error.
func MustStore(id StoreID) Store {
	s, ok := Lookup(id)
	if !ok {
		panic(fmt.Sprintf("stores: unknown store %q", id))
	}
	return s
}

// ParseStoreID validates a store identifier coming from user input.
func ParseStoreID(s string) (StoreID, error) {
	id := StoreID(s)
	if _, ok := catalog[id]; !ok {
		return "", fmt.Errorf("unknown store %q", s)
	}
	return id, nil
}
