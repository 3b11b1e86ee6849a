package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // 10 req/sec, Scryfall's published limit
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
	maxSearchPages = 10
)

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	baseURL     string
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RateLimit      time.Duration
	InitialBackoff time.Duration
}

// NewClient creates a new Scryfall API client.
func NewClient() *Client {
	return NewClientWithOptions(Options{})
}

// NewClientWithOptions creates a Scryfall client with the given overrides.
func NewClientWithOptions(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "MTG-Price-Finder/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = requestTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rateLimitDelay
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = initialBackoff
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(opts.RateLimit), 1),
		userAgent:   opts.UserAgent,
		baseURL:     opts.BaseURL,
		backoff:     opts.InitialBackoff,
		sleep:       sleepContext,
	}
}

// SearchPrintings returns every paper printing of the card with exactly this name,
// cheapest USD price first as ordered by Scryfall. Follows pagination.
func (c *Client) SearchPrintings(ctx context.Context, name string) ([]Card, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("!%q game:paper", name))
	q.Set("unique", "prints")
	q.Set("order", "usd")
	next := fmt.Sprintf("%s/cards/search?%s", c.baseURL, q.Encode())

	var cards []Card
	for page := 0; next != "" && page < maxSearchPages; page++ {
		var result SearchResult
		if err := c.doRequest(ctx, next, &result); err != nil {
			return nil, fmt.Errorf("failed to search printings of '%s': %w", name, err)
		}
		cards = append(cards, result.Data...)
		next = ""
		if result.HasMore {
			next = result.NextPage
		}
	}

	return cards, nil
}

// Named performs a fuzzy single-card lookup and returns Scryfall's best match.
func (c *Client) Named(ctx context.Context, fuzzy string) (*Card, error) {
	q := url.Values{}
	q.Set("fuzzy", fuzzy)
	u := fmt.Sprintf("%s/cards/named?%s", c.baseURL, q.Encode())

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to look up card '%s': %w", fuzzy, err)
	}

	return &card, nil
}

// Autocomplete returns up to 20 card names starting with the given prefix.
func (c *Client) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	q := url.Values{}
	q.Set("q", prefix)
	u := fmt.Sprintf("%s/cards/autocomplete?%s", c.baseURL, q.Encode())

	var catalog Catalog
	if err := c.doRequest(ctx, u, &catalog); err != nil {
		return nil, fmt.Errorf("failed to autocomplete '%s': %w", prefix, err)
	}

	return catalog.Data, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retryAfter, err := c.do(ctx, url, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if retryAfter < 0 || attempt == maxRetries {
			return err
		}

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
		backoff = min(backoff*2, maxBackoff)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// do executes one attempt. A non-negative retryAfter marks the error as retryable;
// zero means "use the client's backoff".
func (c *Client) do(ctx context.Context, url string, result interface{}) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return -1, fmt.Errorf("HTTP request failed: %w", err)
		}
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return -1, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return -1, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return -1, nil

	case http.StatusTooManyRequests:
		var wait time.Duration
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
		return wait, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return -1, &NotFoundError{URL: url}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return -1, &apiErr
		}
		return -1, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
