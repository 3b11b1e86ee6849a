package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-price-finder/internal/api/response"
	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
)

// Autocompleter suggests card names.
type Autocompleter interface {
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

// LineEvaluator prices a single deck line.
type LineEvaluator interface {
	EvaluateLine(ctx context.Context, line deck.Line, excludeSpecial bool) deck.Evaluation
}

// CardHandler handles card-related API requests.
type CardHandler struct {
	catalog   Autocompleter
	evaluator LineEvaluator
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(catalog Autocompleter, evaluator LineEvaluator) *CardHandler {
	return &CardHandler{catalog: catalog, evaluator: evaluator}
}

// Autocomplete returns card names for the q prefix. Catalog failures yield an empty list.
func (h *CardHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.Autocomplete(r.Context(), r.URL.Query().Get("q"))
	if err != nil || names == nil {
		names = []string{}
	}
	response.Success(w, names)
}

// GetPrice resolves a card name and prices it at every store.
func (h *CardHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("card name is required"))
		return
	}

	excludeSpecial := false
	if v := r.URL.Query().Get("exclude_special"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, errors.New("exclude_special must be a boolean"))
			return
		}
		excludeSpecial = parsed
	}

	row := h.evaluator.EvaluateLine(r.Context(), deck.Line{Quantity: 1, Name: name}, excludeSpecial)
	view := NewRowView(row)

	switch view.Code {
	case CodeCatalogNotFound, CodeNoStandardPrintings:
		response.JSON(w, http.StatusNotFound, view)
	default:
		response.Success(w, view)
	}
}
