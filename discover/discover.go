// Package discover finds candidate product detail pages on a manufacturer site.
package discover

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/scraper"
)

// ErrNoTargets means live discovery, the known list and the fallback list were all empty.
var ErrNoTargets = errors.New("no product pages discovered")

// DefaultExclude lists path fragments of sections that are never product pages.
var DefaultExclude = []string{
	"/contact", "/about", "/news", "/blog", "/events", "/privacy", "/terms", "/legal",
	"/dealer", "/find-a-dealer", "/careers", "/jobs", "/login", "/account", "/cart",
	"/search", "/tag/", "/category/news", "/author/", "/feed", "/wp-json", "/wp-admin",
	"/wp-content/", "/parts", "/warranty-registration", "/media", "/gallery", "/videos",
	".pdf", ".jpg", ".jpeg", ".png", ".zip",
}

// Rules is the manufacturer-specific relevance test.
type Rules struct {
	// AllowedDomains are hosts links must belong to; subdomains match.
	AllowedDomains []string
	// Keywords mark a URL as a product page when found anywhere in its lowercased path.
	Keywords []string
	// Exclude adds path fragments to DefaultExclude.
	Exclude []string
	// MinSegments drops URLs with fewer path segments. Defaults to 1.
	MinSegments int
	// DeepSegments keeps URLs with at least this many segments regardless of keywords.
	// Defaults to 3.
	DeepSegments int
	// FanOut enables a second pass over discovered category pages.
	FanOut bool
	// CategoryKeywords identify category pages for the fan-out pass. Category pages
	// are visited but never returned as targets.
	CategoryKeywords []string
	// Known are statically known product URLs, unioned with live results.
	Known []string
	// Fallback is used only when everything else yields nothing.
	Fallback []string
}

func (r Rules) withDefaults() Rules {
	if r.MinSegments <= 0 {
		r.MinSegments = 1
	}
	if r.DeepSegments <= 0 {
		r.DeepSegments = 3
	}
	return r
}

// Discoverer collects product URLs through a navigator.
type Discoverer struct {
	nav    scraper.Navigator
	rules  Rules
	logger *slog.Logger
}

// New returns a Discoverer. A nil logger uses slog.Default.
func New(nav scraper.Navigator, rules Rules, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{nav: nav, rules: rules.withDefaults(), logger: logger}
}

// Discover loads every seed, collects and filters its links, optionally fans out
// over category pages and unions the result with the known product list. The
// output keeps first-seen order and contains no duplicates.
func (d *Discoverer) Discover(ctx context.Context, seeds []string) ([]string, error) {
	visited := newOrderedSet()
	for _, seed := range seeds {
		visited.add(Normalize(seed))
	}

	found := newOrderedSet()
	var categories []string
	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		links, err := d.collect(ctx, seed)
		if err != nil {
			d.logger.Warn("seed page failed", slog.String("url", seed), slog.Any("error", err))
			continue
		}
		for _, link := range links {
			if d.rules.FanOut && d.isCategory(link) && !visited.has(link) {
				categories = append(categories, link)
				visited.add(link)
				continue
			}
			found.add(link)
		}
	}

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		links, err := d.collect(ctx, category)
		if err != nil {
			d.logger.Warn("category page failed", slog.String("url", category), slog.Any("error", err))
			continue
		}
		for _, link := range links {
			found.add(link)
		}
	}

	targets := newOrderedSet()
	for _, link := range found.items() {
		if visited.has(link) || d.isCategory(link) {
			continue
		}
		if d.Relevant(link) {
			targets.add(link)
		}
	}
	for _, known := range d.rules.Known {
		if n := Normalize(known); n != "" {
			targets.add(n)
		}
	}

	d.logger.Debug("discovery finished",
		slog.Int("seeds", len(seeds)),
		slog.Int("categories", len(categories)),
		slog.Int("links", found.len()),
		slog.Int("targets", targets.len()),
	)

	if targets.len() == 0 {
		for _, fallback := range d.rules.Fallback {
			if n := Normalize(fallback); n != "" {
				targets.add(n)
			}
		}
		if targets.len() > 0 {
			d.logger.Warn("live discovery empty, using fallback pages", slog.Int("pages", targets.len()))
		}
	}
	if targets.len() == 0 {
		return nil, ErrNoTargets
	}
	return targets.items(), nil
}

// collect loads pageURL and returns its normalized on-domain links.
func (d *Discoverer) collect(ctx context.Context, pageURL string) ([]string, error) {
	page, err := d.nav.Goto(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	var links []string
	for _, link := range extract.Links(page.Doc, page.URL) {
		n := Normalize(link)
		if n == "" || !d.onDomain(n) {
			continue
		}
		links = append(links, n)
	}
	return links, nil
}

// Relevant applies the exclusion list, the minimum depth and the keyword-or-deep test.
func (d *Discoverer) Relevant(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ex := range DefaultExclude {
		if strings.Contains(path, ex) {
			return false
		}
	}
	for _, ex := range d.rules.Exclude {
		if ex != "" && strings.Contains(path, strings.ToLower(ex)) {
			return false
		}
	}

	segments := Segments(u.Path)
	if segments < d.rules.MinSegments {
		return false
	}
	if segments >= d.rules.DeepSegments {
		return true
	}
	for _, kw := range d.rules.Keywords {
		if kw != "" && strings.Contains(path, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (d *Discoverer) isCategory(rawURL string) bool {
	if len(d.rules.CategoryKeywords) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))
	for _, kw := range d.rules.CategoryKeywords {
		if kw == "" {
			continue
		}
		kw = strings.ToLower(strings.Trim(kw, "/"))
		if strings.HasSuffix(path, "/"+kw) {
			return true
		}
	}
	return false
}

func (d *Discoverer) onDomain(rawURL string) bool {
	if len(d.rules.AllowedDomains) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range d.rules.AllowedDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Normalize lowercases the host, drops the fragment and trims a trailing slash
// from non-root paths. It returns "" for unparseable or non-http(s) URLs.
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}

// Segments counts the non-empty path segments of p.
func Segments(p string) int {
	n := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}

type orderedSet struct {
	index map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *orderedSet) has(v string) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *orderedSet) len() int {
	return len(s.order)
}
