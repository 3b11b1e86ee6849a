package stores

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeRenderer renders pages in headless Chrome so that prices injected by
// client-side scripts are present in the markup.
type ChromeRenderer struct {
	ExecPath string
	Timeout  time.Duration
	Settle   time.Duration
}

// NewChromeRenderer creates a renderer; an empty execPath lets chromedp find Chrome.
func NewChromeRenderer(execPath string, timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeRenderer{ExecPath: execPath, Timeout: timeout, Settle: time.Second}
}

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.UserAgent(defaultUserAgent),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, r.Timeout)
	defer cancel()

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	var html, finalURL string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.Settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if tabCtx.Err() == context.DeadlineExceeded || isTimeout(err) {
			return Page{}, &FetchError{Kind: KindTimeout, URL: url, Err: err}
		}
		return Page{}, &FetchError{Kind: KindOther, URL: url, Err: err}
	}

	code := int(status.Load())
	if code == 0 {
		code = 200
	}
	return Page{URL: finalURL, Status: code, Body: html}, statusError(url, code)
}
