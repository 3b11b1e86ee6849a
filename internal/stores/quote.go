package stores

import "github.com/ramonehamilton/mtg-price-finder/internal/printing"

// Locator addresses one printing at one store.
type Locator struct {
	Store    StoreID
	URL      string
	Path     string
	Identity printing.Identity
}

// Quote is the priced-or-failed result of asking one store for one printing.
// Price is set and positive exactly when Err is nil.
type Quote struct {
	Store    StoreID   `json:"store"`
	URL      string    `json:"url,omitempty"`
	Price    *float64  `json:"price,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Kind     ErrorKind `json:"error,omitempty"`
	Message  string    `json:"message,omitempty"`
	Attempts int       `json:"attempts"`
	Err      error     `json:"-"`
}

// Priced reports whether the quote carries a price.
func (q Quote) Priced() bool {
	return q.Err == nil && q.Price != nil && *q.Price > 0
}

// NewPricedQuote builds a successful quote. A non-positive price is turned into
// a parse failure so that no quote ever reports a free card.
func NewPricedQuote(store Store, url string, price float64) Quote {
	if price <= 0 {
		return NewFailedQuote(store.ID, url, &FetchError{Kind: KindParseFailure, URL: url})
	}
	return Quote{Store: store.ID, URL: url, Price: &price, Currency: store.Currency}
}

// NewFailedQuote builds an error quote.
func NewFailedQuote(id StoreID, url string, err error) Quote {
	return Quote{Store: id, URL: url, Kind: KindOf(err), Message: err.Error(), Err: err}
}
