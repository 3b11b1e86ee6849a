package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ramonehamilton/mtg-price-finder/internal/cards"
	"github.com/ramonehamilton/mtg-price-finder/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-price-finder/internal/config"
	"github.com/ramonehamilton/mtg-price-finder/internal/currency"
	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/metrics"
	"github.com/ramonehamilton/mtg-price-finder/internal/pricing"
	"github.com/ramonehamilton/mtg-price-finder/internal/storage"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// app holds the wired services shared by every command.
type app struct {
	cfg          *config.Config
	db           *storage.DB
	catalog      *cards.Service
	aggregator   *pricing.Aggregator
	orchestrator *deck.Orchestrator
	converter    *currency.Converter
	metrics      *metrics.FetchMetrics
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.NewFetchMetrics(0)}

	var cache *storage.CatalogCache
	if !cfg.Catalog.DisableCache {
		db, err := storage.Open(storage.DefaultConfig(cfg.Catalog.DBPath))
		if err != nil {
			return nil, fmt.Errorf("open catalog cache: %w", err)
		}
		a.db = db
		cache = storage.NewCatalogCache(db, cfg.CacheTTL())
		if removed, err := cache.Purge(ctx); err != nil {
			slog.Warn("catalog cache purge failed", "error", err)
		} else if removed > 0 {
			slog.Debug("purged expired catalog entries", "count", removed)
		}
	}

	client := scryfall.NewClientWithOptions(scryfall.Options{
		BaseURL:   cfg.Catalog.BaseURL,
		RateLimit: cfg.RateLimit(),
	})
	a.catalog = cards.NewService(client, cache, slog.Default())
	a.catalog.SetRecorder(a.metrics)

	a.converter = currency.Load(ctx, cfg.Currency.RateURL, cfg.Currency.FallbackRate)

	set := stores.NewDefaultSet(storeOptions(cfg))
	a.aggregator = pricing.NewAggregator(set, cfg.RetryPolicy(), a.converter)
	a.aggregator.SetRecorder(a.metrics)
	a.orchestrator = deck.NewOrchestrator(a.catalog, a.aggregator, set.IDs(), cfg.LineDelay())

	return a, nil
}

func storeOptions(cfg *config.Config) stores.Options {
	timeout := cfg.FetchTimeout()
	opts := stores.Options{
		BaseURLs:  map[stores.StoreID]string{},
		Renderers: map[stores.StoreID]stores.Renderer{},
		Default:   stores.NewHTTPRenderer(timeout),
	}

	var chrome stores.Renderer
	for name, sc := range cfg.Stores {
		id, err := stores.ParseStoreID(name)
		if err != nil {
			continue
		}
		if sc.BaseURL != "" {
			opts.BaseURLs[id] = sc.BaseURL
		}
		if sc.Renderer == config.RendererChrome {
			if chrome == nil {
				chrome = stores.NewChromeRenderer(cfg.Fetch.ChromePath, timeout)
			}
			opts.Renderers[id] = chrome
		}
	}
	return opts
}

func (a *app) deckOptions() deck.Options {
	return deck.Options{
		ExcludeBasicLands: !a.cfg.Deck.IncludeBasicLands,
		ExcludeSpecial:    a.cfg.Deck.ExcludeSpecial,
	}
}

// Close releases the cache database.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
