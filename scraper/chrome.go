package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// ChromeNavigator renders pages in a headless Chrome, for sites whose markup is
// assembled client-side. One browser is shared; each Goto opens a fresh tab.
type ChromeNavigator struct {
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	opts          Options
	retry         retrier
}

// NewChromeNavigator starts a headless browser.
func NewChromeNavigator(opts Options) (*ChromeNavigator, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &ChromeNavigator{
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		opts:          opts,
		retry:         newRetrier(opts),
	}, nil
}

// Goto loads rawURL in a new tab and snapshots the rendered DOM.
func (n *ChromeNavigator) Goto(ctx context.Context, rawURL string) (*Page, error) {
	return n.retry.do(ctx, rawURL, n.fetch)
}

// Close shuts the browser down.
func (n *ChromeNavigator) Close() error {
	n.cancelBrowser()
	n.cancelAlloc()
	return nil
}

func (n *ChromeNavigator) fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(n.browserCtx)
	defer cancelTab()
	scrapeCtx, cancelScrape := context.WithTimeout(tabCtx, n.opts.Timeout)
	defer cancelScrape()
	stop := context.AfterFunc(ctx, cancelScrape)
	defer stop()

	resp, err := chromedp.RunResponse(scrapeCtx, chromedp.Navigate(rawURL))
	if err != nil {
		if errors.Is(scrapeCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout{Err: err}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyError(err, 0)
	}
	status := 0
	if resp != nil {
		status = int(resp.Status)
	}
	if status != 0 && (status < 200 || status > 299) {
		return nil, classifyError(nil, status)
	}

	var html, location string
	if err := chromedp.Run(scrapeCtx,
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		if errors.Is(scrapeCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout{Err: err}
		}
		return nil, fmt.Errorf("snapshot dom: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if location == "" {
		location = rawURL
	}
	return &Page{URL: location, StatusCode: status, Doc: doc}, nil
}
