package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/mtg-price-finder/internal/api/response"
	"github.com/ramonehamilton/mtg-price-finder/internal/currency"
	"github.com/ramonehamilton/mtg-price-finder/internal/metrics"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

var errMetricsDisabled = errors.New("metrics are disabled")

// SystemHandler serves process-wide information.
type SystemHandler struct {
	converter *currency.Converter
	stores    []stores.StoreID
	metrics   *metrics.FetchMetrics
}

// NewSystemHandler creates a new SystemHandler. m may be nil.
func NewSystemHandler(converter *currency.Converter, storeIDs []stores.StoreID, m *metrics.FetchMetrics) *SystemHandler {
	return &SystemHandler{converter: converter, stores: storeIDs, metrics: m}
}

// GetCurrency returns the USD to CAD rate in use.
func (h *SystemHandler) GetCurrency(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.converter.Snapshot())
}

// GetStores lists the configured stores in declaration order.
func (h *SystemHandler) GetStores(w http.ResponseWriter, _ *http.Request) {
	views := make([]StoreView, 0, len(h.stores))
	for _, id := range h.stores {
		if s, ok := stores.Lookup(id); ok {
			views = append(views, StoreView{ID: s.ID, Name: s.Name, Currency: s.Currency})
		}
	}
	response.Success(w, views)
}

// GetMetrics returns store fetch and catalog cache statistics.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	if h.metrics == nil {
		response.NotFound(w, errMetricsDisabled)
		return
	}
	response.Success(w, h.metrics.GetStats())
}
