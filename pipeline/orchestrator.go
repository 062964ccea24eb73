// Package pipeline runs one manufacturer end to end: discover product pages, scrape
// them one at a time, build catalog entries, upsert them and reconcile the
// manufacturer summary. Upserted products can additionally be exported to files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/trailer-catalog/builder"
	"github.com/aluiziolira/trailer-catalog/catalog"
	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
	"github.com/aluiziolira/trailer-catalog/scraper"
)

const reconcileTimeout = 30 * time.Second

// Skip reasons reported in metrics.
const (
	skipNavigation = "navigation"
	skipNoProduct  = "no_product"
	skipNoName     = "no_name"
	skipWrite      = "write"
)

// Profile is everything that differs between manufacturers.
type Profile struct {
	Slug  string
	Name  string
	Seeds []string
	Rules discover.Rules
	// Extract tunes selectors and the image allow-list.
	Extract extract.Options
	Table   knowledge.Table
	// GenericTitles are site-wide headings that are never product names.
	GenericTitles []string
	DelayMin      time.Duration
	DelayMax      time.Duration
	// SynthesizeFallbacks upserts every table line no scraped page resolved to.
	SynthesizeFallbacks bool
}

// Sink receives every successfully upserted product.
type Sink interface {
	Process(products ...*models.Product) error
}

// Options are the run dependencies shared across manufacturers.
type Options struct {
	Store     catalog.Store
	Navigator scraper.Navigator
	// CacheSize bounds the per-run page cache. Zero disables it.
	CacheSize int
	// DelayMin and DelayMax override the profile's politeness delay when DelayMax > 0.
	DelayMin time.Duration
	DelayMax time.Duration
	Sink     Sink
	Metrics  *scraper.Metrics
	Logger   *slog.Logger
	// Stats receives live counters; a nil value allocates a private one.
	Stats *models.RunStats
}

// Orchestrator runs one manufacturer profile.
type Orchestrator struct {
	profile   Profile
	store     catalog.Store
	nav       scraper.Navigator
	extractor *extract.Extractor
	builder   *builder.Builder
	sink      Sink
	metrics   *scraper.Metrics
	logger    *slog.Logger
	stats     *models.RunStats
}

// New wires an orchestrator. The navigator is wrapped with the politeness delay and
// the page cache; the caller keeps ownership of the navigator it passed in.
func New(profile Profile, opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline: nil store")
	}
	if opts.Navigator == nil {
		return nil, errors.New("pipeline: nil navigator")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stats == nil {
		opts.Stats = &models.RunStats{}
	}

	delayMin, delayMax := profile.DelayMin, profile.DelayMax
	if opts.DelayMax > 0 {
		delayMin, delayMax = opts.DelayMin, opts.DelayMax
	}
	nav, err := scraper.Cached(scraper.Polite(opts.Navigator, delayMin, delayMax), opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: page cache: %w", err)
	}

	return &Orchestrator{
		profile:   profile,
		store:     opts.Store,
		nav:       nav,
		extractor: extract.New(profile.Extract),
		builder: builder.New(builder.Options{
			Table:         profile.Table,
			GenericTitles: append([]string{profile.Name}, profile.GenericTitles...),
		}),
		sink:    opts.Sink,
		metrics: opts.Metrics,
		logger:  opts.Logger.With(slog.String("manufacturer", profile.Slug)),
		stats:   opts.Stats,
	}, nil
}

// Stats exposes the live counters of the run.
func (o *Orchestrator) Stats() *models.RunStats {
	return o.stats
}

// Run executes Discovering, Scraping and Reconciling. Per-page failures are counted
// and skipped. Discovery exhaustion and a failing manufacturer row abort the run; a
// cancelled context stops scraping but reconciliation still runs.
func (o *Orchestrator) Run(ctx context.Context) (models.RunResult, error) {
	start := time.Now()
	result := func(count int) models.RunResult {
		r := o.stats.Snapshot(o.profile.Slug)
		r.ProductCount = count
		r.StartTime = start
		r.EndTime = time.Now()
		return r
	}

	manufacturerID, err := o.store.EnsureManufacturer(ctx, o.profile.Slug, o.profile.Name)
	if err != nil {
		return result(0), fmt.Errorf("manufacturer row: %w", err)
	}

	targets, err := discover.New(o.nav, o.profile.Rules, o.logger).Discover(ctx, o.profile.Seeds)
	if err != nil {
		return result(0), fmt.Errorf("discover: %w", err)
	}
	o.stats.AddDiscovered(len(targets))
	o.logger.Info("discovery complete", slog.Int("targets", len(targets)))

	touched := make(map[string]struct{})
	resolved := make(map[string]struct{})

	var runErr error
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		o.logger.Debug("scraping page", slog.Int("page", i+1), slog.Int("of", len(targets)), slog.String("url", target))
		lineID, slug, ok := o.scrapePage(ctx, manufacturerID, target)
		if !ok {
			continue
		}
		touched[slug] = struct{}{}
		if lineID != "" {
			resolved[lineID] = struct{}{}
		}
	}

	if runErr == nil && o.profile.SynthesizeFallbacks {
		o.synthesize(ctx, manufacturerID, resolved, touched)
	}

	count := o.reconcile(ctx, manufacturerID, len(touched))
	if runErr != nil {
		return result(count), runErr
	}

	r := result(count)
	o.logger.Info("manufacturer complete",
		slog.Int("scraped", r.Scraped),
		slog.Int("upserted", r.Upserted),
		slog.Int("errors", r.Errors),
		slog.Int("product_count", count),
	)
	return r, nil
}

// scrapePage loads, extracts, builds and upserts one page. It reports the resolved
// knowledge line and the product slug when the product was written.
func (o *Orchestrator) scrapePage(ctx context.Context, manufacturerID, target string) (string, string, bool) {
	page, err := o.nav.Goto(ctx, target)
	if err != nil {
		o.skip(skipNavigation)
		o.logger.Warn("page load failed",
			slog.String("url", target),
			slog.String("error_type", scraper.ErrorTypeLabel(err)),
			slog.Any("error", err),
		)
		return "", "", false
	}

	pageURL := page.URL
	if pageURL == "" {
		pageURL = target
	}
	data, err := o.extractor.Extract(page.Doc, pageURL)
	if err != nil {
		o.skip(skipNoProduct)
		o.logger.Debug("not a product page", slog.String("url", pageURL))
		return "", "", false
	}
	o.stats.IncScraped()

	entry, lineID, err := o.builder.Build(manufacturerID, data)
	if err != nil {
		o.skip(skipNoName)
		o.logger.Debug("no usable product name", slog.String("url", pageURL), slog.String("heading", data.Name))
		return "", "", false
	}

	if !o.write(ctx, manufacturerID, entry) {
		return "", "", false
	}
	return lineID, entry.Product.Slug, true
}

// synthesize upserts table lines that no scraped page resolved to. A line whose
// slug was already written by a scraped page is left alone.
func (o *Orchestrator) synthesize(ctx context.Context, manufacturerID string, resolved, touched map[string]struct{}) {
	for _, line := range o.profile.Table.Lines {
		if _, ok := resolved[line.ID]; ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		entry := o.builder.Synthesize(manufacturerID, line)
		if _, dup := touched[parser.Slugify(entry.Product.Name)]; dup {
			continue
		}
		if !o.write(ctx, manufacturerID, entry) {
			continue
		}
		touched[entry.Product.Slug] = struct{}{}
		o.stats.IncSynthesized()
		o.logger.Info("synthesized fallback product", slog.String("line", line.ID), slog.String("product", entry.Product.Name))
	}
}

// write upserts the product and its child collections. A failed product write is a
// skipped page; failed child writes are counted but keep the product.
func (o *Orchestrator) write(ctx context.Context, manufacturerID string, entry *models.CatalogEntry) bool {
	productID, err := o.store.UpsertProduct(ctx, manufacturerID, entry.Product)
	if err != nil {
		o.skip(skipWrite)
		o.logger.Error("product upsert failed", slog.String("product", entry.Product.Name), slog.Any("error", err))
		return false
	}
	if err := o.store.UpsertImages(ctx, productID, entry.Images); err != nil {
		o.stats.IncErrors()
		o.logger.Error("image upsert failed", slog.String("product", entry.Product.Name), slog.Any("error", err))
	}
	if err := o.store.UpsertSpecs(ctx, productID, entry.Specs); err != nil {
		o.stats.IncErrors()
		o.logger.Error("spec upsert failed", slog.String("product", entry.Product.Name), slog.Any("error", err))
	}

	o.stats.IncUpserted()
	o.metrics.IncUpserted(o.profile.Slug)
	if o.sink != nil {
		if err := o.sink.Process(entry.Product); err != nil {
			o.logger.Warn("export failed", slog.String("product", entry.Product.Name), slog.Any("error", err))
		}
	}
	return true
}

// reconcile recomputes the manufacturer's product count. It runs on a detached
// context so a cancelled run still leaves a correct summary row.
func (o *Orchestrator) reconcile(ctx context.Context, manufacturerID string, touched int) int {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	count, err := o.store.UpdateProductCount(rctx, manufacturerID)
	if err != nil {
		o.logger.Error("product count update failed", slog.Any("error", err))
		return 0
	}
	if count > touched {
		// Products are never deactivated, so rows from earlier runs stay active.
		o.logger.Info("active products not seen in this run",
			slog.Int("active", count),
			slog.Int("seen", touched),
		)
	}
	return count
}

func (o *Orchestrator) skip(reason string) {
	o.stats.IncErrors()
	o.metrics.IncSkipped(o.profile.Slug, reason)
}
