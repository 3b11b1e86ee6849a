package deck

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/mtg-price-finder/internal/pricing"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

// DefaultLineDelay is the pause between consecutive deck lines.
const DefaultLineDelay = time.Second

// Catalog resolves card names to printings.
type Catalog interface {
	SearchPrintings(ctx context.Context, name string) ([]printing.Printing, error)
	Suggester
}

// Pricer prices one printing at every store.
type Pricer interface {
	Quote(ctx context.Context, p printing.Printing) pricing.Result
}

// Observer is called after each line settles, with the row's index.
type Observer func(index int, row Evaluation)

// Options are the per-run filters.
type Options struct {
	ExcludeBasicLands bool
	ExcludeSpecial    bool

	// Observer, when set, receives every row as soon as it is built.
	Observer Observer
}

// Evaluation is the result for one deck line. It is never changed after
// the orchestrator moves to the next line.
type Evaluation struct {
	Line     Line
	Printing *printing.Printing
	Quotes   []stores.Quote
	Cheapest *stores.Quote

	// ReferencePrice is the catalog price in CAD, when known.
	ReferencePrice *float64

	// Contributions is price × quantity for each store that priced the line.
	Contributions map[stores.StoreID]float64

	Err        error
	Suggestion string
}

// Priced reports whether any store produced a price for the line.
func (e Evaluation) Priced() bool {
	return e.Cheapest != nil
}

// Report is the outcome of one deck evaluation.
type Report struct {
	ID     string
	Stores []stores.StoreID
	Rows   []Evaluation

	// Totals sums contributions per store over the lines priced there.
	Totals map[stores.StoreID]float64

	// CheapestTotal sums the cheapest offer × quantity over priced lines.
	CheapestTotal float64

	// Cancelled is set when the context ended the run before the last line.
	Cancelled bool
}

// Orchestrator evaluates deck lines one at a time.
type Orchestrator struct {
	catalog  Catalog
	pricer   Pricer
	storeIDs []stores.StoreID
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given stores, in declaration order.
// A negative delay uses DefaultLineDelay.
func NewOrchestrator(catalog Catalog, pricer Pricer, storeIDs []stores.StoreID, delay time.Duration) *Orchestrator {
	if delay < 0 {
		delay = DefaultLineDelay
	}
	return &Orchestrator{
		catalog:  catalog,
		pricer:   pricer,
		storeIDs: append([]stores.StoreID(nil), storeIDs...),
		delay:    delay,
		sleep:    sleepContext,
		logger:   slog.Default(),
	}
}

// Evaluate processes lines strictly in order, pausing between lines. Every
// surviving line yields exactly one row, whether or not it priced.
func (o *Orchestrator) Evaluate(ctx context.Context, lines []Line, opts Options) Report {
	if opts.ExcludeBasicLands {
		lines = WithoutBasicLands(lines)
	}

	report := Report{
		ID:     uuid.NewString(),
		Stores: append([]stores.StoreID(nil), o.storeIDs...),
		Rows:   make([]Evaluation, 0, len(lines)),
		Totals: make(map[stores.StoreID]float64, len(o.storeIDs)),
	}
	for _, id := range o.storeIDs {
		report.Totals[id] = 0
	}

	logger := o.logger.With("run_id", report.ID)
	logger.Info("deck evaluation started", "lines", len(lines), "exclude_special", opts.ExcludeSpecial)

	for i, line := range lines {
		if i > 0 && o.delay > 0 {
			if err := o.sleep(ctx, o.delay); err != nil {
				report.Cancelled = true
				break
			}
		}
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		row := o.evaluateLine(ctx, line, opts.ExcludeSpecial)
		for id, amount := range row.Contributions {
			report.Totals[id] += amount
		}
		if row.Cheapest != nil {
			report.CheapestTotal += *row.Cheapest.Price * float64(line.Quantity)
		}
		report.Rows = append(report.Rows, row)

		if row.Err != nil {
			logger.Warn("deck line failed", "card", line.Name, "error", row.Err)
		} else {
			logger.Debug("deck line priced", "card", line.Name, "store", row.Cheapest.Store, "price", *row.Cheapest.Price)
		}
		if opts.Observer != nil {
			opts.Observer(i, row)
		}
	}

	logger.Info("deck evaluation finished", "rows", len(report.Rows), "cancelled", report.Cancelled)
	return report
}

// EvaluateLine runs the full pipeline for one line.
func (o *Orchestrator) EvaluateLine(ctx context.Context, line Line, excludeSpecial bool) Evaluation {
	return o.evaluateLine(ctx, line, excludeSpecial)
}

func (o *Orchestrator) evaluateLine(ctx context.Context, line Line, excludeSpecial bool) Evaluation {
	row := Evaluation{Line: line, Contributions: map[stores.StoreID]float64{}}

	printings, err := o.catalog.SearchPrintings(ctx, line.Name)
	if err != nil || len(printings) == 0 {
		row.Err = printing.ErrCatalogNotFound
		if err != nil {
			row.Err = err
		}
		if errors.Is(row.Err, printing.ErrCatalogNotFound) {
			row.Suggestion = Suggest(ctx, o.catalog, line.Name)
		}
		return row
	}

	selected, err := printing.Select(printings, excludeSpecial)
	if err != nil {
		row.Err = err
		return row
	}
	row.Printing = &selected

	result := o.pricer.Quote(ctx, selected)
	row.Quotes = result.Quotes
	row.Cheapest = result.Cheapest
	row.ReferencePrice = result.ReferencePrice
	row.Err = result.Err

	for _, q := range result.Quotes {
		if q.Priced() {
			row.Contributions[q.Store] = *q.Price * float64(line.Quantity)
		}
	}
	return row
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
