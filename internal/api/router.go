package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-price-finder/internal/api/handlers"
	"github.com/ramonehamilton/mtg-price-finder/internal/api/response"
	"github.com/ramonehamilton/mtg-price-finder/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		storeIDs := s.services.Aggregator.Stores().IDs()

		storeHandler := handlers.NewStoreHandler(s.services.Aggregator)
		systemHandler := handlers.NewSystemHandler(s.services.Currency, storeIDs, s.services.Metrics)
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", systemHandler.GetStores)
			r.Get("/{store}/price/{cardSlug}/{setSlug}/{number}/{setCode}/{variant}/{promo}", storeHandler.GetPrice)
		})

		cardHandler := handlers.NewCardHandler(s.services.Catalog, s.services.Orchestrator)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/autocomplete", cardHandler.Autocomplete)
			r.Get("/{name}/price", cardHandler.GetPrice)
		})

		deckHandler := handlers.NewDeckHandler(s.services.Orchestrator, s.originAllowed)
		r.Route("/decks", func(r chi.Router) {
			r.Post("/evaluate", deckHandler.Evaluate)
			r.Get("/stream", deckHandler.Stream)
		})

		r.Get("/currency", systemHandler.GetCurrency)
		r.Get("/metrics", systemHandler.GetMetrics)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "mtg-price-finder-api",
		"version": version.GetVersion(),
	})
}
