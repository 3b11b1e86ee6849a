// Package pricing queries every storefront for one printing and picks the cheapest offer.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// ErrAggregateNoPrices means every store failed for a resolved printing.
var ErrAggregateNoPrices = errors.New("no prices found")

var tracer = otel.Tracer("github.com/ramonehamilton/mtg-price-finder/internal/pricing")

// Converter converts catalog (USD) prices to the stores' currency.
type Converter interface {
	ToCAD(usd float64) float64
}

// Result is the aggregate of one printing across all stores.
type Result struct {
	Printing printing.Printing
	Identity printing.Identity

	// Quotes has one entry per configured store, in declaration order.
	Quotes []stores.Quote

	// Cheapest is nil when no store produced a price.
	Cheapest *stores.Quote

	// ReferencePrice is the catalog price converted to CAD, when known.
	ReferencePrice *float64

	// Err is ErrAggregateNoPrices when Cheapest is nil.
	Err error
}

// Quote returns the quote of a store, if that store was queried.
func (r Result) Quote(id stores.StoreID) (stores.Quote, bool) {
	for _, q := range r.Quotes {
		if q.Store == id {
			return q, true
		}
	}
	return stores.Quote{}, false
}

// FetchRecorder observes every finished store lookup.
type FetchRecorder interface {
	RecordFetch(store string, elapsed time.Duration, attempts int, err error)
}

// Aggregator fans one printing out to every store adapter.
type Aggregator struct {
	set       *stores.Set
	policy    stores.RetryPolicy
	converter Converter
	recorder  FetchRecorder
}

// NewAggregator creates an aggregator. converter may be nil.
func NewAggregator(set *stores.Set, policy stores.RetryPolicy, converter Converter) *Aggregator {
	return &Aggregator{set: set, policy: policy, converter: converter}
}

// SetRecorder installs a recorder for store lookups. It must be called
// before the aggregator is used.
func (a *Aggregator) SetRecorder(r FetchRecorder) {
	a.recorder = r
}

// Stores returns the configured adapter set.
func (a *Aggregator) Stores() *stores.Set {
	return a.set
}

// Quote prices p at every store concurrently and waits for all of them.
// A failing store never cancels the others.
func (a *Aggregator) Quote(ctx context.Context, p printing.Printing) Result {
	ctx, span := tracer.Start(ctx, "pricing.Quote")
	defer span.End()
	span.SetAttributes(
		attribute.String("card", p.Name),
		attribute.String("set", p.SetCode),
	)

	id := printing.NewIdentity(p)
	adapters := a.set.Adapters()
	quotes := make([]stores.Quote, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter stores.Adapter) {
			defer wg.Done()
			quotes[i] = a.quoteOne(ctx, adapter, id)
		}(i, adapter)
	}
	wg.Wait()

	result := Result{Printing: p, Identity: id, Quotes: quotes}
	if cheapest, ok := Cheapest(quotes); ok {
		result.Cheapest = &cheapest
		span.SetAttributes(attribute.String("cheapest_store", string(cheapest.Store)))
	} else {
		result.Err = ErrAggregateNoPrices
	}
	if p.HasPrice() && a.converter != nil {
		ref := a.converter.ToCAD(*p.CatalogPrice)
		result.ReferencePrice = &ref
	}

	return result
}

// QuoteStore prices one identity at one store, with retries.
func (a *Aggregator) QuoteStore(ctx context.Context, storeID stores.StoreID, id printing.Identity) (stores.Quote, error) {
	adapter, ok := a.set.Get(storeID)
	if !ok {
		return stores.Quote{}, fmt.Errorf("store %q is not configured", storeID)
	}
	return a.quoteOne(ctx, adapter, id), nil
}

func (a *Aggregator) quoteOne(ctx context.Context, adapter stores.Adapter, id printing.Identity) stores.Quote {
	storeID := adapter.Store().ID

	loc, err := adapter.Locate(id)
	if err != nil {
		slog.ErrorContext(ctx, "cannot build product locator", "store", storeID, "card", id.Name, "err", err)
		return stores.NewFailedQuote(storeID, "", err)
	}

	start := time.Now()
	quote, attempts, _ := stores.WithRetry(ctx, a.policy, func(ctx context.Context) (stores.Quote, error) {
		q := adapter.FetchQuote(ctx, loc)
		return q, q.Err
	})
	quote.Attempts = attempts
	if a.recorder != nil {
		a.recorder.RecordFetch(string(storeID), time.Since(start), attempts, quote.Err)
	}
	return quote
}

// Cheapest returns the lowest priced quote. On equal prices the quote that
// comes first (store declaration order) wins.
func Cheapest(quotes []stores.Quote) (stores.Quote, bool) {
	best := -1
	for i, q := range quotes {
		if !q.Priced() {
			continue
		}
		if best < 0 || *q.Price < *quotes[best].Price {
			best = i
		}
	}
	if best < 0 {
		return stores.Quote{}, false
	}
	return quotes[best], true
}
