package scraper

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PoliteNavigator waits a random delay in [min, max] before every navigation
// except the first.
type PoliteNavigator struct {
	next Navigator
	min  time.Duration
	max  time.Duration

	mu      sync.Mutex
	started bool
	sleep   func(context.Context, time.Duration) error
}

// Polite wraps next with a randomized inter-request delay.
func Polite(next Navigator, min, max time.Duration) *PoliteNavigator {
	if max < min {
		max = min
	}
	return &PoliteNavigator{next: next, min: min, max: max, sleep: sleepContext}
}

// Goto waits, then delegates.
func (p *PoliteNavigator) Goto(ctx context.Context, rawURL string) (*Page, error) {
	p.mu.Lock()
	wait := p.started
	p.started = true
	p.mu.Unlock()

	if wait {
		if err := p.sleep(ctx, p.Delay()); err != nil {
			return nil, err
		}
	}
	return p.next.Goto(ctx, rawURL)
}

// Delay draws one delay from [min, max].
func (p *PoliteNavigator) Delay() time.Duration {
	if p.max <= p.min {
		return p.min
	}
	return p.min + rand.N(p.max-p.min+1)
}

// Close closes the wrapped navigator.
func (p *PoliteNavigator) Close() error {
	return p.next.Close()
}

// CachedNavigator memoizes successful page loads in an LRU keyed by URL.
type CachedNavigator struct {
	next  Navigator
	cache *lru.Cache[string, *Page]
}

// Cached wraps next with an LRU of size entries. A non-positive size disables caching.
func Cached(next Navigator, size int) (Navigator, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[string, *Page](size)
	if err != nil {
		return nil, err
	}
	return &CachedNavigator{next: next, cache: cache}, nil
}

// Goto returns the cached page for rawURL or loads it.
func (c *CachedNavigator) Goto(ctx context.Context, rawURL string) (*Page, error) {
	if page, ok := c.cache.Get(rawURL); ok {
		return page, nil
	}
	page, err := c.next.Goto(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	c.cache.Add(rawURL, page)
	return page, nil
}

// Close purges the cache and closes the wrapped navigator.
func (c *CachedNavigator) Close() error {
	c.cache.Purge()
	return c.next.Close()
}
