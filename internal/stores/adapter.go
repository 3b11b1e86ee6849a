package stores

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
)

var tracer = otel.Tracer("github.com/ramonehamilton/mtg-price-finder/internal/stores")

// Adapter prices printings at one storefront.
type Adapter interface {
	Store() Store
	// Locate builds the product locator; it does no I/O.
	Locate(id printing.Identity) (Locator, error)
	// FetchQuote makes a single attempt at pricing loc. Failures are carried in
	// the returned Quote, never panicked or dropped.
	FetchQuote(ctx context.Context, loc Locator) Quote
}

// PageAdapter is an Adapter that renders the product page and extracts a price from it.
type PageAdapter struct {
	store     Store
	renderer  Renderer
	extractor Extractor
}

// NewPageAdapter wires a store definition to a renderer and an extractor.
func NewPageAdapter(store Store, renderer Renderer, extractor Extractor) *PageAdapter {
	return &PageAdapter{store: store, renderer: renderer, extractor: extractor}
}

// Store implements Adapter.
func (a *PageAdapter) Store() Store { return a.store }

// Locate implements Adapter.
func (a *PageAdapter) Locate(id printing.Identity) (Locator, error) {
	path, err := a.store.Template.Build(id, a.store.ID)
	if err != nil {
		return Locator{}, err
	}
	return Locator{
		Store:    a.store.ID,
		URL:      strings.TrimRight(a.store.BaseURL, "/") + path,
		Path:     path,
		Identity: id,
	}, nil
}

// FetchQuote implements Adapter.
func (a *PageAdapter) FetchQuote(ctx context.Context, loc Locator) Quote {
	ctx, span := tracer.Start(ctx, "stores.FetchQuote")
	defer span.End()
	span.SetAttributes(
		attribute.String("store", string(a.store.ID)),
		attribute.String("url", loc.URL),
	)

	quote := a.fetch(ctx, loc)
	if quote.Err != nil {
		span.RecordError(quote.Err)
		span.SetStatus(codes.Error, string(quote.Kind))
		slog.DebugContext(ctx, "store quote failed", "store", a.store.ID, "url", loc.URL, "kind", quote.Kind, "err", quote.Err)
	} else {
		span.SetAttributes(attribute.Float64("price", *quote.Price))
		slog.DebugContext(ctx, "store quote", "store", a.store.ID, "url", loc.URL, "price", *quote.Price)
	}
	return quote
}

func (a *PageAdapter) fetch(ctx context.Context, loc Locator) Quote {
	page, err := a.renderer.Render(ctx, loc.URL)
	if err != nil {
		return NewFailedQuote(a.store.ID, loc.URL, err)
	}

	price, err := a.extractor.Extract(page)
	if err != nil {
		return NewFailedQuote(a.store.ID, loc.URL, err)
	}
	return NewPricedQuote(a.store, loc.URL, price)
}

// Set is the ordered collection of configured adapters.
type Set struct {
	adapters []Adapter
}

// NewSet orders adapters by Declared; unknown or duplicate stores are rejected.
func NewSet(adapters ...Adapter) (*Set, error) {
	byID := make(map[StoreID]Adapter, len(adapters))
	for _, a := range adapters {
		if a == nil {
			return nil, fmt.Errorf("nil adapter")
		}
		id := a.Store().ID
		if _, ok := Lookup(id); !ok {
			return nil, fmt.Errorf("unknown store %q", id)
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate adapter for store %q", id)
		}
		byID[id] = a
	}

	set := &Set{}
	for _, id := range Declared {
		if a, ok := byID[id]; ok {
			set.adapters = append(set.adapters, a)
		}
	}
	return set, nil
}

// Adapters returns the adapters in declaration order.
func (s *Set) Adapters() []Adapter {
	return s.adapters
}

// IDs returns the configured store IDs in declaration order.
func (s *Set) IDs() []StoreID {
	ids := make([]StoreID, 0, len(s.adapters))
	for _, a := range s.adapters {
		ids = append(ids, a.Store().ID)
	}
	return ids
}

// Get returns the adapter for a store.
func (s *Set) Get(id StoreID) (Adapter, bool) {
	for _, a := range s.adapters {
		if a.Store().ID == id {
			return a, true
		}
	}
	return nil, false
}

// Options configures the default adapter set.
type Options struct {
	// BaseURLs overrides store base URLs, e.g. to point at a test server.
	BaseURLs map[StoreID]string
	// Renderers overrides the renderer per store; the rest use Default.
	Renderers map[StoreID]Renderer
	Default   Renderer
}

// NewDefaultSet builds the three storefront adapters. 401 Games uses
// variant-aware extraction, the others selector extraction.
func NewDefaultSet(opts Options) *Set {
	if opts.Default == nil {
		opts.Default = NewHTTPRenderer(0)
	}

	build := func(id StoreID, ex Extractor) Adapter {
		store := MustStore(id)
		if u, ok := opts.BaseURLs[id]; ok && u != "" {
			store.BaseURL = u
		}
		r := opts.Default
		if custom, ok := opts.Renderers[id]; ok && custom != nil {
			r = custom
		}
		return NewPageAdapter(store, r, ex)
	}

	set, _ := NewSet(
		build(FaceToFace, NewSelectorExtractor()),
		build(FourOhOne, NewVariantExtractor()),
		build(WizardsTower, NewSelectorExtractor()),
	)
	return set
}
