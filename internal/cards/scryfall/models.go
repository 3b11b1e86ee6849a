package scryfall

import (
	"errors"
	"fmt"
)

// Card represents one printing of a Magic card from Scryfall.
type Card struct {
	ID       string `json:"id"`
	OracleID string `json:"oracle_id"`

	Name        string `json:"name"`
	Lang        string `json:"lang"`
	ReleasedAt  string `json:"released_at"`
	ScryfallURI string `json:"scryfall_uri"`
	Layout      string `json:"layout"`
	TypeLine    string `json:"type_line"`

	// Print details
	SetCode         string `json:"set"`
	SetName         string `json:"set_name"`
	CollectorNumber string `json:"collector_number"`
	Rarity          string `json:"rarity"`
	Digital         bool   `json:"digital"`

	// Visual treatment
	Frame        string   `json:"frame"`
	FrameEffects []string `json:"frame_effects,omitempty"`
	BorderColor  string   `json:"border_color"`
	FullArt      bool     `json:"full_art"`
	Promo        bool     `json:"promo"`
	PromoTypes   []string `json:"promo_types,omitempty"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`

	Prices Prices `json:"prices"`

	PurchaseURIs map[string]string `json:"purchase_uris,omitempty"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name     string `json:"name"`
	TypeLine string `json:"type_line"`
}

// Prices represents the prices of a card in various currencies.
// Scryfall encodes prices as decimal strings and omits them when unknown.
type Prices struct {
	USD       *string `json:"usd,omitempty"`
	USDFoil   *string `json:"usd_foil,omitempty"`
	USDEtched *string `json:"usd_etched,omitempty"`
	EUR       *string `json:"eur,omitempty"`
	TIX       *string `json:"tix,omitempty"`
}

// SearchResult represents one page of search results from Scryfall.
type SearchResult struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// Catalog is Scryfall's list-of-strings object, returned by autocomplete.
type Catalog struct {
	Object      string   `json:"object"`
	TotalValues int      `json:"total_values"`
	Data        []string `json:"data"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if the error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
