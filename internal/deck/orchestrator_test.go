package deck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-price-finder/internal/pricing"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

type fakeCatalog struct {
	printings map[string][]printing.Printing
	names     []string
	fuzzy     map[string]string
	searched  []string
}

func (f *fakeCatalog) SearchPrintings(_ context.Context, name string) ([]printing.Printing, error) {
	f.searched = append(f.searched, name)
	p, ok := f.printings[name]
	if !ok {
		return nil, printing.ErrCatalogNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Named(_ context.Context, q string) (printing.Printing, error) {
	if name, ok := f.fuzzy[q]; ok {
		return printing.Printing{Name: name}, nil
	}
	return printing.Printing{}, printing.ErrCatalogNotFound
}

func (f *fakeCatalog) Autocomplete(_ context.Context, _ string) ([]string, error) {
	return f.names, nil
}

// fakePricer returns fixed per-store prices per card name; a missing store fails as not found.
type fakePricer struct {
	prices map[string]map[stores.StoreID]float64
	calls  []string
}

func (f *fakePricer) Quote(_ context.Context, p printing.Printing) pricing.Result {
	f.calls = append(f.calls, p.Name)
	var quotes []stores.Quote
	for _, id := range stores.Declared {
		store := stores.MustStore(id)
		if price, ok := f.prices[p.Name][id]; ok {
			quotes = append(quotes, stores.NewPricedQuote(store, store.BaseURL, price))
		} else {
			quotes = append(quotes, stores.NewFailedQuote(id, store.BaseURL, stores.ErrNotFound))
		}
	}
	result := pricing.Result{Printing: p, Quotes: quotes}
	if c, ok := pricing.Cheapest(quotes); ok {
		result.Cheapest = &c
	} else {
		result.Err = pricing.ErrAggregateNoPrices
	}
	return result
}

func price(v float64) *float64 { return &v }

func printingOf(name string) []printing.Printing {
	return []printing.Printing{{Name: name, SetCode: "tst", SetName: "Test Set", CollectorNumber: "1", Frame: "2015", BorderColor: "black", CatalogPrice: price(1)}}
}

func newTestOrchestrator(catalog Catalog, pricer Pricer, delay time.Duration, slept *[]time.Duration) *Orchestrator {
	o := NewOrchestrator(catalog, pricer, stores.Declared, delay)
	o.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return o
}

func TestEvaluate_CatalogMissOnMiddleLine(t *testing.T) {
	catalog := &fakeCatalog{
		printings: map[string][]printing.Printing{
			"Lightning Bolt": printingOf("Lightning Bolt"),
			"Goblin Guide":   printingOf("Goblin Guide"),
		},
		names: []string{"Lightning Bolt", "Lightning Helix"},
	}
	pricer := &fakePricer{prices: map[string]map[stores.StoreID]float64{
		"Lightning Bolt": {stores.FaceToFace: 1.25, stores.FourOhOne: 0.99, stores.WizardsTower: 1.10},
		"Goblin Guide":   {stores.FaceToFace: 4.00, stores.FourOhOne: 4.50, stores.WizardsTower: 3.75},
	}}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, pricer, 50*time.Millisecond, &slept)

	lines := []Line{
		{Quantity: 4, Name: "Lightning Bolt"},
		{Quantity: 1, Name: "Lightnig Bolt"},
		{Quantity: 2, Name: "Goblin Guide"},
	}
	report := o.Evaluate(context.Background(), lines, Options{})

	require.Len(t, report.Rows, 3)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.Cancelled)

	assert.NoError(t, report.Rows[0].Err)
	require.NotNil(t, report.Rows[0].Cheapest)
	assert.Equal(t, stores.FourOhOne, report.Rows[0].Cheapest.Store)

	assert.ErrorIs(t, report.Rows[1].Err, printing.ErrCatalogNotFound)
	assert.Nil(t, report.Rows[1].Printing)
	assert.Empty(t, report.Rows[1].Contributions)
	assert.Equal(t, "Lightning Bolt", report.Rows[1].Suggestion)

	assert.NoError(t, report.Rows[2].Err)
	require.NotNil(t, report.Rows[2].Cheapest)
	assert.Equal(t, stores.WizardsTower, report.Rows[2].Cheapest.Store)

	assert.Equal(t, []string{"Lightning Bolt", "Goblin Guide"}, pricer.calls)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, slept)
}

func TestEvaluate_Totals(t *testing.T) {
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{
		"Lightning Bolt": printingOf("Lightning Bolt"),
		"Counterspell":   printingOf("Counterspell"),
	}}
	pricer := &fakePricer{prices: map[string]map[stores.StoreID]float64{
		"Lightning Bolt": {stores.FaceToFace: 1.00, stores.FourOhOne: 2.00},
		"Counterspell":   {stores.FaceToFace: 0.50, stores.WizardsTower: 0.25},
	}}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, pricer, 0, &slept)

	report := o.Evaluate(context.Background(), []Line{
		{Quantity: 4, Name: "Lightning Bolt"},
		{Quantity: 2, Name: "Counterspell"},
	}, Options{})

	assert.InDelta(t, 5.00, report.Totals[stores.FaceToFace], 1e-9)
	assert.InDelta(t, 8.00, report.Totals[stores.FourOhOne], 1e-9)
	assert.InDelta(t, 0.50, report.Totals[stores.WizardsTower], 1e-9)
	assert.InDelta(t, 4.50, report.CheapestTotal, 1e-9)
	assert.Empty(t, slept)

	_, ok := report.Rows[0].Contributions[stores.WizardsTower]
	assert.False(t, ok, "stores without a price contribute nothing")
}

func TestEvaluate_ExcludeBasicLands(t *testing.T) {
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{
		"Lightning Bolt": printingOf("Lightning Bolt"),
		"Island":         printingOf("Island"),
	}}
	pricer := &fakePricer{prices: map[string]map[stores.StoreID]float64{
		"Lightning Bolt": {stores.FaceToFace: 1},
		"Island":         {stores.FaceToFace: 0.25},
	}}
	lines := []Line{{Quantity: 4, Name: "Lightning Bolt"}, {Quantity: 10, Name: "Island"}}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, pricer, 0, &slept)

	with := o.Evaluate(context.Background(), lines, Options{ExcludeBasicLands: true})
	require.Len(t, with.Rows, 1)
	assert.Equal(t, "Lightning Bolt", with.Rows[0].Line.Name)

	without := o.Evaluate(context.Background(), lines, Options{})
	require.Len(t, without.Rows, 2)
	assert.Equal(t, "Island", without.Rows[1].Line.Name)
}

func TestEvaluate_NoStandardPrintings(t *testing.T) {
	showcase := printingOf("Fable of the Mirror-Breaker")
	showcase[0].FrameEffects = []string{"showcase"}
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{"Fable of the Mirror-Breaker": showcase}}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, &fakePricer{}, 0, &slept)

	report := o.Evaluate(context.Background(), []Line{{Quantity: 1, Name: "Fable of the Mirror-Breaker"}}, Options{ExcludeSpecial: true})
	require.Len(t, report.Rows, 1)
	assert.ErrorIs(t, report.Rows[0].Err, printing.ErrNoStandardPrintings)
	assert.Empty(t, report.Rows[0].Suggestion)
}

func TestEvaluate_AllStoresFail(t *testing.T) {
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{"Obscure Card": printingOf("Obscure Card")}}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, &fakePricer{}, 0, &slept)

	report := o.Evaluate(context.Background(), []Line{{Quantity: 1, Name: "Obscure Card"}}, Options{})
	require.Len(t, report.Rows, 1)
	assert.ErrorIs(t, report.Rows[0].Err, pricing.ErrAggregateNoPrices)
	assert.Len(t, report.Rows[0].Quotes, len(stores.Declared))
	assert.NotNil(t, report.Rows[0].Printing)
}

func TestEvaluate_ObserverSeesRowsInOrder(t *testing.T) {
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{
		"A": printingOf("A"), "B": printingOf("B"), "C": printingOf("C"),
	}}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, &fakePricer{}, time.Millisecond, &slept)

	var seen []string
	var indexes []int
	o.Evaluate(context.Background(), []Line{{1, "A"}, {1, "B"}, {1, "C"}}, Options{
		Observer: func(i int, row Evaluation) {
			indexes = append(indexes, i)
			seen = append(seen, row.Line.Name)
		},
	})

	assert.Equal(t, []int{0, 1, 2}, indexes)
	assert.Equal(t, []string{"A", "B", "C"}, seen)
}

func TestEvaluate_CancelledBetweenLines(t *testing.T) {
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{"A": printingOf("A"), "B": printingOf("B")}}
	o := NewOrchestrator(catalog, &fakePricer{}, stores.Declared, time.Millisecond)
	o.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	report := o.Evaluate(context.Background(), []Line{{1, "A"}, {1, "B"}}, Options{})
	assert.True(t, report.Cancelled)
	assert.Len(t, report.Rows, 1)
	assert.Equal(t, []string{"A"}, catalog.searched)
}

func TestEvaluate_PreservesOrderProperty(t *testing.T) {
	names := []string{"Plains", "Bolt", "island", "Helix", "Forest", "Opt", "Swamp"}
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{}}
	for _, n := range names {
		catalog.printings[n] = printingOf(n)
	}

	var slept []time.Duration
	o := newTestOrchestrator(catalog, &fakePricer{}, 0, &slept)

	var lines []Line
	for _, n := range names {
		lines = append(lines, Line{Quantity: 1, Name: n})
	}

	for _, exclude := range []bool{false, true} {
		report := o.Evaluate(context.Background(), lines, Options{ExcludeBasicLands: exclude})
		expected := lines
		if exclude {
			expected = WithoutBasicLands(lines)
		}
		require.Len(t, report.Rows, len(expected))
		for i, row := range report.Rows {
			assert.Equal(t, expected[i], row.Line)
		}
	}
}

func TestEvaluateLine_CatalogError(t *testing.T) {
	catalog := &errCatalog{err: errors.New("upstream down")}
	o := NewOrchestrator(catalog, &fakePricer{}, stores.Declared, 0)

	row := o.EvaluateLine(context.Background(), Line{Quantity: 1, Name: "Bolt"}, false)
	assert.EqualError(t, row.Err, "upstream down")
	assert.Empty(t, row.Suggestion)
}

type errCatalog struct{ err error }

func (e *errCatalog) SearchPrintings(context.Context, string) ([]printing.Printing, error) {
	return nil, e.err
}

func (e *errCatalog) Named(context.Context, string) (printing.Printing, error) {
	return printing.Printing{}, e.err
}

func (e *errCatalog) Autocomplete(context.Context, string) ([]string, error) {
	return nil, e.err
}

func TestEvaluateLine_FuzzySuggestion(t *testing.T) {
	catalog := &fakeCatalog{
		printings: map[string][]printing.Printing{},
		fuzzy:     map[string]string{"Jace Mind Sculptor": "Jace, the Mind Sculptor"},
	}
	o := newTestOrchestrator(catalog, &fakePricer{}, 0, nil)

	row := o.EvaluateLine(context.Background(), Line{Quantity: 1, Name: "Jace Mind Sculptor"}, false)

	assert.ErrorIs(t, row.Err, printing.ErrCatalogNotFound)
	assert.Equal(t, "Jace, the Mind Sculptor", row.Suggestion)
}

func TestEvaluate_ZeroQuantityKeepsRow(t *testing.T) {
	catalog := &fakeCatalog{printings: map[string][]printing.Printing{
		"Lightning Bolt": printingOf("Lightning Bolt"),
		"Skullcrack":     printingOf("Skullcrack"),
	}}
	pricer := &fakePricer{prices: map[string]map[stores.StoreID]float64{
		"Lightning Bolt": {stores.FaceToFace: 1.00},
		"Skullcrack":     {stores.FaceToFace: 0.50},
	}}
	o := newTestOrchestrator(catalog, pricer, 0, &[]time.Duration{})

	report := o.Evaluate(context.Background(), Parse("2 Lightning Bolt\n0 Skullcrack"), Options{})

	require.Len(t, report.Rows, 2)
	assert.Equal(t, 0, report.Rows[1].Line.Quantity)
	assert.True(t, report.Rows[1].Priced())
	assert.InDelta(t, 2.00, report.Totals[stores.FaceToFace], 1e-9)
	assert.InDelta(t, 2.00, report.CheapestTotal, 1e-9)
}
