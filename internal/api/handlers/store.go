package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-price-finder/internal/api/response"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// StoreQuoter prices one identity at one store.
type StoreQuoter interface {
	QuoteStore(ctx context.Context, storeID stores.StoreID, id printing.Identity) (stores.Quote, error)
}

// StoreHandler serves the per-store pricing endpoint.
type StoreHandler struct {
	quoter StoreQuoter
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(quoter StoreQuoter) *StoreHandler {
	return &StoreHandler{quoter: quoter}
}

// StorePrice is the success body of the store pricing endpoint.
type StorePrice struct {
	Price    float64        `json:"price"`
	Currency string         `json:"currency"`
	Store    stores.StoreID `json:"store"`
	URL      string         `json:"url"`
}

// StoreError is the failure body of the store pricing endpoint.
type StoreError struct {
	Error   stores.ErrorKind `json:"error"`
	Message string           `json:"message,omitempty"`
	URL     string           `json:"url,omitempty"`
}

// GetPrice prices one card identity at the store named in the path.
// Path: /{store}/price/{cardSlug}/{setSlug}/{number}/{setCode}/{variant}/{promo}
// where variant "-" means none and promo is "promo" or "-".
func (h *StoreHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	storeID, err := stores.ParseStoreID(chi.URLParam(r, "store"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	id, err := identityFromPath(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	quote, err := h.quoter.QuoteStore(r.Context(), storeID, id)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if errors.Is(quote.Err, stores.ErrMalformedIdentity) {
		response.BadRequest(w, quote.Err)
		return
	}

	if quote.Priced() {
		response.JSON(w, http.StatusOK, StorePrice{
			Price:    *quote.Price,
			Currency: quote.Currency,
			Store:    quote.Store,
			URL:      quote.URL,
		})
		return
	}

	response.JSON(w, statusForKind(quote.Kind), StoreError{
		Error:   quote.Kind,
		Message: quote.Message,
		URL:     quote.URL,
	})
}

func identityFromPath(r *http.Request) (printing.Identity, error) {
	cardSlug := printing.Slugify(chi.URLParam(r, "cardSlug"))
	if cardSlug == "" {
		return printing.Identity{}, errors.New("card slug is required")
	}

	variant, err := printing.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		return printing.Identity{}, err
	}

	var promo bool
	switch chi.URLParam(r, "promo") {
	case "promo":
		promo = true
	case "-", "":
	default:
		return printing.Identity{}, errors.New(`promo must be "promo" or "-"`)
	}

	number := chi.URLParam(r, "number")
	if number == "-" {
		number = ""
	}

	return printing.Identity{
		Name:            cardSlug,
		NameSlug:        cardSlug,
		FullNameSlug:    cardSlug,
		SetNameSlug:     printing.Slugify(chi.URLParam(r, "setSlug")),
		SetCode:         chi.URLParam(r, "setCode"),
		CollectorNumber: number,
		Variant:         variant,
		PromoPack:       promo,
	}, nil
}

func statusForKind(kind stores.ErrorKind) int {
	switch kind {
	case stores.KindNotFound:
		return http.StatusNotFound
	case stores.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
