package page

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
)

// BrowserFetcher renders a page in headless Chrome and returns the
// resulting document. A fresh tab is used per fetch.
type BrowserFetcher struct {
	logger       *common.Logger
	limiter      *rate.Limiter
	timeout      time.Duration
	userAgent    string
	waitSelector string
	allocOpts    []chromedp.ExecAllocatorOption
}

var _ interfaces.PageFetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher creates a chromedp backed fetcher. Chrome is started
// lazily on the first fetch.
func NewBrowserFetcher(opts ...Option) *BrowserFetcher {
	o := buildOptions(opts)
	alloc := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
		chromedp.UserAgent(o.userAgent),
	)
	return &BrowserFetcher{
		logger:       o.logger,
		limiter:      rate.NewLimiter(rate.Limit(o.rateLimit), o.rateLimit),
		timeout:      o.timeout,
		userAgent:    o.userAgent,
		waitSelector: o.waitSelector,
		allocOpts:    alloc,
	}
}

// Fetch navigates to url and captures the rendered HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.allocOpts...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, f.timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if f.waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(f.waitSelector, chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser fetch %s: %w", url, err)
	}

	f.logger.Debug().Str("url", url).Int("bytes", len(html)).
		Str("elapsed", time.Since(start).String()).Msg("Page rendered")
	return []byte(html), nil
}
