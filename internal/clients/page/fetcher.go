// Package page fetches ranking pages over plain HTTP or through a headless
// browser for pages that render their tables client-side.
package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 8 << 20
)

// HTTPFetcher downloads a page body with a browser-like user agent.
type HTTPFetcher struct {
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	userAgent  string
}

var _ interfaces.PageFetcher = (*HTTPFetcher)(nil)

// Option configures a fetcher
type Option func(*options)

type options struct {
	logger       *common.Logger
	rateLimit    int
	timeout      time.Duration
	userAgent    string
	waitSelector string
	httpClient   *http.Client
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) Option {
	return func(o *options) {
		if requestsPerSecond > 0 {
			o.rateLimit = requestsPerSecond
		}
	}
}

// WithTimeout bounds one fetch
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithWaitSelector makes the browser fetcher wait for a CSS selector
// before capturing the document.
func WithWaitSelector(sel string) Option {
	return func(o *options) {
		o.waitSelector = sel
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:    common.NewSilentLogger(),
		rateLimit: DefaultRateLimit,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewHTTPFetcher creates a plain HTTP page fetcher
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	o := buildOptions(opts)
	client := o.httpClient
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}
	return &HTTPFetcher{
		httpClient: client,
		logger:     o.logger,
		limiter:    rate.NewLimiter(rate.Limit(o.rateLimit), o.rateLimit),
		userAgent:  o.userAgent,
	}
}

// StatusError reports a non-200 page response
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("page fetch %s: status %d", e.URL, e.StatusCode)
}

// Fetch returns the raw body of url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	f.logger.Debug().Str("url", url).Int("bytes", len(body)).
		Str("elapsed", time.Since(start).String()).Msg("Page fetched")
	return body, nil
}

// New picks a fetcher for the configured renderer. Anything other than
// "browser" gets the HTTP fetcher.
func New(cfg common.ScrapeConfig, logger *common.Logger) interfaces.PageFetcher {
	opts := []Option{
		WithLogger(logger),
		WithRateLimit(cfg.RateLimit),
		WithTimeout(cfg.GetTimeout()),
		WithUserAgent(cfg.UserAgent),
		WithWaitSelector(cfg.WaitSelector),
	}
	if cfg.Renderer == "browser" {
		return NewBrowserFetcher(opts...)
	}
	return NewHTTPFetcher(opts...)
}
