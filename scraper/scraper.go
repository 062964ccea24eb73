// Package scraper provides the browsing capability the catalog pipeline consumes:
// load a URL and hand back a queryable document.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Page is a loaded document.
type Page struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Doc        *goquery.Document
}

// Navigator loads pages. Implementations must be safe for sequential use by one
// orchestrator; concurrent use is only required of the cache wrapper.
type Navigator interface {
	Goto(ctx context.Context, rawURL string) (*Page, error)
	Close() error
}

// Options configures the HTTP and headless navigators.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	// Transport overrides the HTTP transport of the colly navigator (tests use httpmock).
	Transport http.RoundTripper
	Metrics   *Metrics
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 45 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// CollyNavigator fetches pages over plain HTTP with a colly collector.
type CollyNavigator struct {
	base  *colly.Collector
	retry retrier
}

// NewCollyNavigator builds a synchronous collector configured from opts.
func NewCollyNavigator(opts Options) *CollyNavigator {
	opts = opts.withDefaults()

	collector := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(opts.Timeout)
	if opts.Transport != nil {
		collector.WithTransport(opts.Transport)
	} else {
		collector.WithTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		})
	}

	return &CollyNavigator{
		base:  collector,
		retry: newRetrier(opts),
	}
}

// Goto loads rawURL, retrying retryable failures with capped exponential backoff.
func (n *CollyNavigator) Goto(ctx context.Context, rawURL string) (*Page, error) {
	return n.retry.do(ctx, rawURL, n.fetch)
}

// Close is a no-op; the collector holds no resources beyond idle connections.
func (n *CollyNavigator) Close() error {
	return nil
}

func (n *CollyNavigator) fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Clones share the backend (transport, timeout) but not callbacks.
	c := n.base.Clone()

	var (
		page     *Page
		status   int
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("parse document: %w", err)
			return
		}
		page = &Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Doc:        doc,
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr == nil && page == nil {
		fetchErr = errors.New("empty response")
	}
	if fetchErr != nil {
		return nil, classifyError(fetchErr, status)
	}
	return page, nil
}

type fetchFunc func(ctx context.Context, rawURL string) (*Page, error)

// retrier is the synchronous counterpart of a scheduled retry queue: the
// orchestrator owns a single thread of control, so the wait happens inline.
type retrier struct {
	maxRetries int
	backoff    time.Duration
	backoffMax time.Duration
	metrics    *Metrics
	logger     *slog.Logger
}

func newRetrier(opts Options) retrier {
	return retrier{
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
		backoffMax: opts.RetryBackoffMax,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

func (r retrier) do(ctx context.Context, rawURL string, fetch fetchFunc) (*Page, error) {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		page, err := fetch(ctx, rawURL)
		if err == nil {
			r.metrics.ObserveDuration(time.Since(start))
			r.metrics.IncNavigation("ok")
			return page, nil
		}

		label := ErrorTypeLabel(err)
		if attempt >= r.maxRetries || !IsRetryable(err) {
			r.metrics.IncNavigation("error")
			r.metrics.IncError(label)
			return nil, err
		}

		r.metrics.IncRetries()
		delay := r.delay(attempt + 1)
		r.logger.Debug("retrying navigation",
			slog.String("url", rawURL),
			slog.String("category", label),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
		)
		if err := sleepContext(ctx, delay); err != nil {
			r.metrics.IncNavigation("error")
			return nil, err
		}
	}
}

func (r retrier) delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := r.backoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := r.backoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
