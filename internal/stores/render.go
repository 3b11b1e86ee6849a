package stores

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Page is a fetched (and possibly rendered) product page.
type Page struct {
	URL    string
	Status int
	Body   string
}

// Renderer retrieves the markup of a product page. Implementations map
// transport-level outcomes onto *FetchError kinds.
type Renderer interface {
	Render(ctx context.Context, url string) (Page, error)
}

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; MTG-Price-Finder/1.0)"
	defaultTimeout   = 15 * time.Second
)

// HTTPRenderer fetches pages with a plain HTTP GET.
type HTTPRenderer struct {
	client *resty.Client
}

// NewHTTPRenderer creates a renderer with the given per-request timeout.
func NewHTTPRenderer(timeout time.Duration) *HTTPRenderer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &HTTPRenderer{client: client}
}

// Render implements Renderer.
func (r *HTTPRenderer) Render(ctx context.Context, url string) (Page, error) {
	res, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		if isTimeout(err) {
			return Page{}, &FetchError{Kind: KindTimeout, URL: url, Err: err}
		}
		return Page{}, &FetchError{Kind: KindOther, URL: url, Err: err}
	}

	page := Page{URL: url, Status: res.StatusCode(), Body: res.String()}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		page.URL = res.RawResponse.Request.URL.String()
	}
	return page, statusError(url, res.StatusCode())
}

// statusError maps a page's HTTP status to a fetch error; 2xx yields nil.
func statusError(url string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return &FetchError{Kind: KindNotFound, URL: url, Status: status}
	case status == http.StatusTooManyRequests:
		return &FetchError{Kind: KindRateLimited, URL: url, Status: status}
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return &FetchError{Kind: KindTimeout, URL: url, Status: status}
	default:
		return &FetchError{Kind: KindOther, URL: url, Status: status}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
