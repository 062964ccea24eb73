package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// StaticNavigator serves pages from memory. Unknown URLs yield ErrNotFound.
// It is the offline site used by tests and by replaying saved pages.
type StaticNavigator struct {
	mu     sync.Mutex
	pages  map[string]string
	visits map[string]int
}

// NewStaticNavigator returns a navigator serving pages keyed by URL.
func NewStaticNavigator(pages map[string]string) *StaticNavigator {
	copied := make(map[string]string, len(pages))
	for u, body := range pages {
		copied[u] = body
	}
	return &StaticNavigator{pages: copied, visits: make(map[string]int)}
}

// Set registers or replaces a page.
func (n *StaticNavigator) Set(rawURL, html string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pages[rawURL] = html
}

// Goto parses the stored HTML for rawURL.
func (n *StaticNavigator) Goto(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n.mu.Lock()
	n.visits[rawURL]++
	body, ok := n.pages[rawURL]
	n.mu.Unlock()

	if !ok {
		return nil, classifyError(fmt.Errorf("no page for %s", rawURL), http.StatusNotFound)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Page{URL: rawURL, StatusCode: http.StatusOK, Doc: doc}, nil
}

// Visits reports how many times rawURL was requested.
func (n *StaticNavigator) Visits(rawURL string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visits[rawURL]
}

// Close is a no-op.
func (n *StaticNavigator) Close() error {
	return nil
}
