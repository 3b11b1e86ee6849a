// Package cards resolves card names to printings through the Scryfall
// catalog, with an optional SQLite-backed lookup cache in front of it.
package cards

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ramonehamilton/mtg-price-finder/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/storage"
)

// CatalogClient is the subset of the Scryfall client the service needs.
type CatalogClient interface {
	SearchPrintings(ctx context.Context, name string) ([]scryfall.Card, error)
	Named(ctx context.Context, fuzzy string) (*scryfall.Card, error)
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

// CacheRecorder counts catalog cache hits and misses.
type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}

// Service is the card catalog used by pricing and deck evaluation.
type Service struct {
	client   CatalogClient
	cache    *storage.CatalogCache
	logger   *slog.Logger
	recorder CacheRecorder
}

// NewService creates a catalog service. cache may be nil.
func NewService(client CatalogClient, cache *storage.CatalogCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, cache: cache, logger: logger}
}

// SearchPrintings returns every printing of the exactly named card in catalog order.
// Any catalog failure is reported as printing.ErrCatalogNotFound so that callers
// treat it as "no data" for this card only.
func (s *Service) SearchPrintings(ctx context.Context, name string) ([]printing.Printing, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, printing.ErrCatalogNotFound
	}

	var cards []scryfall.Card
	if s.cacheGet(ctx, storage.KindPrintings, name, &cards) {
		return printing.FromScryfallList(cards), nil
	}

	cards, err := s.client.SearchPrintings(ctx, name)
	if err != nil {
		if !scryfall.IsNotFound(err) {
			s.logger.Warn("catalog search failed", "card", name, "error", err)
		}
		return nil, fmt.Errorf("%w: %q: %v", printing.ErrCatalogNotFound, name, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: %q", printing.ErrCatalogNotFound, name)
	}

	s.cachePut(ctx, storage.KindPrintings, name, cards)
	return printing.FromScryfallList(cards), nil
}

// Named performs a fuzzy single-card lookup and returns the canonical printing.
func (s *Service) Named(ctx context.Context, fuzzy string) (printing.Printing, error) {
	fuzzy = strings.TrimSpace(fuzzy)
	if fuzzy == "" {
		return printing.Printing{}, printing.ErrCatalogNotFound
	}

	var card scryfall.Card
	if s.cacheGet(ctx, storage.KindNamed, fuzzy, &card) {
		return printing.FromScryfall(card), nil
	}

	found, err := s.client.Named(ctx, fuzzy)
	if err != nil {
		if !scryfall.IsNotFound(err) {
			s.logger.Warn("catalog named lookup failed", "query", fuzzy, "error", err)
		}
		return printing.Printing{}, fmt.Errorf("%w: %q: %v", printing.ErrCatalogNotFound, fuzzy, err)
	}

	s.cachePut(ctx, storage.KindNamed, fuzzy, found)
	return printing.FromScryfall(*found), nil
}

// Autocomplete returns card names starting with prefix. Failures yield no names.
func (s *Service) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < 2 {
		return []string{}, nil
	}

	var names []string
	if s.cacheGet(ctx, storage.KindAutocomplete, prefix, &names) {
		return names, nil
	}

	names, err := s.client.Autocomplete(ctx, prefix)
	if err != nil {
		s.logger.Warn("catalog autocomplete failed", "prefix", prefix, "error", err)
		return []string{}, fmt.Errorf("autocomplete %q: %w", prefix, err)
	}
	if names == nil {
		names = []string{}
	}

	s.cachePut(ctx, storage.KindAutocomplete, prefix, names)
	return names, nil
}

// SetRecorder installs a cache hit/miss recorder.
func (s *Service) SetRecorder(r CacheRecorder) {
	s.recorder = r
}

func (s *Service) cacheGet(ctx context.Context, kind, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, kind, key, out)
	if err != nil {
		s.logger.Warn("catalog cache read failed", "kind", kind, "key", key, "error", err)
		ok = false
	}
	if s.recorder != nil {
		s.recorder.RecordCacheLookup(ok)
	}
	return ok
}

func (s *Service) cachePut(ctx context.Context, kind, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, kind, key, v); err != nil {
		s.logger.Warn("catalog cache write failed", "kind", kind, "key", key, "error", err)
	}
}
