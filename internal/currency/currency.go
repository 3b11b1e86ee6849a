// Package currency holds the process-wide USD to CAD rate.
package currency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	// DefaultRateURL returns {"result":"success","rates":{"CAD":1.36,...}}.
	DefaultRateURL = "https://open.er-api.com/v6/latest/USD"

	// FallbackUSDToCAD is used for the lifetime of the process when the live rate is unavailable.
	FallbackUSDToCAD = 1.36

	fetchTimeout = 10 * time.Second
)

// Converter converts USD amounts to CAD at a rate fixed at startup.
type Converter struct {
	rate      decimal.Decimal
	live      bool
	fetchedAt time.Time
}

// Snapshot describes the rate in use.
type Snapshot struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	Live      bool      `json:"live"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Fixed returns a converter with a fixed rate; fallback is used for non-positive rates.
func Fixed(rate float64) *Converter {
	if rate <= 0 {
		rate = FallbackUSDToCAD
	}
	return &Converter{rate: decimal.NewFromFloat(rate)}
}

// Load fetches the live rate once. Any failure yields the fallback rate and is
// only logged, never returned.
func Load(ctx context.Context, url string, fallback float64) *Converter {
	if fallback <= 0 {
		fallback = FallbackUSDToCAD
	}
	if url == "" {
		url = DefaultRateURL
	}

	rate, err := fetchRate(ctx, url)
	if err != nil {
		slog.WarnContext(ctx, "using fallback exchange rate", "rate", fallback, "err", err)
		return Fixed(fallback)
	}

	slog.InfoContext(ctx, "loaded exchange rate", "from", "USD", "to", "CAD", "rate", rate)
	return &Converter{rate: decimal.NewFromFloat(rate), live: true, fetchedAt: time.Now()}
}

func fetchRate(ctx context.Context, url string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var body rateResponse
	res, err := resty.New().R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&body).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("fetch exchange rate: %w", err)
	}
	if res.IsError() {
		return 0, fmt.Errorf("fetch exchange rate: HTTP %d", res.StatusCode())
	}
	if body.Result != "" && body.Result != "success" {
		return 0, fmt.Errorf("exchange rate service returned %q", body.Result)
	}

	rate, ok := body.Rates["CAD"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("exchange rate response has no CAD rate")
	}
	return rate, nil
}

// ToCAD converts a USD amount, rounded to cents.
func (c *Converter) ToCAD(usd float64) float64 {
	return decimal.NewFromFloat(usd).Mul(c.rate).Round(2).InexactFloat64()
}

// Rate returns the USD to CAD rate.
func (c *Converter) Rate() float64 {
	return c.rate.InexactFloat64()
}

// Snapshot returns a description of the rate in use.
func (c *Converter) Snapshot() Snapshot {
	return Snapshot{From: "USD", To: "CAD", Rate: c.Rate(), Live: c.live, FetchedAt: c.fetchedAt}
}
