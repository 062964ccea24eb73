package pipeline

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aluiziolira/trailer-catalog/catalog"
	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/scraper"
)

const (
	siteRoot    = "https://www.example-trailers.com"
	categoryURL = siteRoot + "/trailers/"
	productAURL = siteRoot + "/trailers/850xt-lowboy"
	productBURL = siteRoot + "/trailers/model-lineup"
)

const categoryHTML = `<html><body>
<nav><a href="/">Home</a> <a href="/contact">Contact</a></nav>
<h1>Our Trailers</h1>
<a href="/trailers/850xt-lowboy">850XT</a>
<a href="/trailers/model-lineup/">Brochure</a>
<a href="/trailers/">All trailers</a>
</body></html>`

const productAHTML = `<html><body>
<h1>850XT Lowboy</h1>
<div class="entry-content"><p>A hydraulic detachable gooseneck lowboy built for heavy haul.</p></div>
<table>
  <tr><td>Capacity:</td><td>50 Ton</td></tr>
  <tr><td>Decking</td><td>Apitong</td></tr>
</table>
<img src="/wp-content/uploads/850xt-side.jpg" alt="850XT side view">
</body></html>`

const productBHTML = `<html><body><p>Download the dealer brochure for every model.</p></body></html>`

func testProfile() Profile {
	return Profile{
		Slug:  "example",
		Name:  "Example Trailers",
		Seeds: []string{categoryURL},
		Rules: discover.Rules{
			AllowedDomains: []string{"example-trailers.com"},
			Keywords:       []string{"trailers"},
		},
	}
}

func testSite() *scraper.StaticNavigator {
	return scraper.NewStaticNavigator(map[string]string{
		categoryURL: categoryHTML,
		productAURL: productAHTML,
		productBURL: productBHTML,
	})
}

func TestRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	metrics := scraper.NewMetrics()

	o, err := New(testProfile(), Options{Store: store, Navigator: testSite(), Metrics: metrics})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Scraped != 1 || result.Upserted != 1 || result.Errors != 1 {
		t.Fatalf("scraped=%d upserted=%d errors=%d, want 1/1/1", result.Scraped, result.Upserted, result.Errors)
	}
	if result.Discovered != 2 || result.ProductCount != 1 {
		t.Fatalf("discovered=%d product_count=%d", result.Discovered, result.ProductCount)
	}

	m, err := store.Manufacturer(ctx, "example")
	if err != nil {
		t.Fatalf("manufacturer: %v", err)
	}
	if m.ProductCount != 1 {
		t.Fatalf("product_count=%d, want 1", m.ProductCount)
	}

	products, err := store.Products(ctx, m.ID)
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products=%d, want 1", len(products))
	}
	p := products[0]
	if p.TonnageMin == nil || p.TonnageMax == nil || *p.TonnageMin != 50 || *p.TonnageMax != 50 {
		t.Fatalf("tonnage=%v/%v, want 50/50", p.TonnageMin, p.TonnageMax)
	}
	if p.Slug != "850xt-lowboy" || p.SourceURL != productAURL {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.GooseneckType != models.GooseneckHydraulicDetachable || p.ProductType != models.ProductTypeLowboy {
		t.Fatalf("classification=%q/%q", p.ProductType, p.GooseneckType)
	}

	images, err := store.Images(ctx, p.ID)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if len(images) != 1 || !images[0].IsPrimary {
		t.Fatalf("images=%+v, want one primary image", images)
	}
	if images[0].URL != siteRoot+"/wp-content/uploads/850xt-side.jpg" {
		t.Fatalf("image url=%q", images[0].URL)
	}

	specs, err := store.Specs(ctx, p.ID)
	if err != nil {
		t.Fatalf("specs: %v", err)
	}
	if len(specs) != 2 || specs[0].Key != "Capacity" || specs[0].Unit != "tons" {
		t.Fatalf("specs=%+v", specs)
	}

	if got := testutil.ToFloat64(metrics.SkippedTotal.WithLabelValues("example", skipNoProduct)); got != 1 {
		t.Fatalf("skipped no_product=%v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.UpsertedTotal.WithLabelValues("example")); got != 1 {
		t.Fatalf("upserted metric=%v, want 1", got)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	site := testSite()

	for i := 0; i < 2; i++ {
		o, err := New(testProfile(), Options{Store: store, Navigator: site})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if _, err := o.Run(ctx); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	m, _ := store.Manufacturer(ctx, "example")
	products, _ := store.Products(ctx, m.ID)
	if len(products) != 1 || m.ProductCount != 1 {
		t.Fatalf("products=%d count=%d after two runs, want 1/1", len(products), m.ProductCount)
	}
}

func TestRunDiscoveryExhausted(t *testing.T) {
	profile := testProfile()
	profile.Seeds = []string{siteRoot + "/missing"}
	store := catalog.NewMemoryStore()

	o, err := New(profile, Options{Store: store, Navigator: testSite()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := o.Run(context.Background())
	if !errors.Is(err, discover.ErrNoTargets) {
		t.Fatalf("err=%v, want ErrNoTargets", err)
	}
	if result.Upserted != 0 {
		t.Fatalf("upserted=%d, want 0", result.Upserted)
	}
}

type failingStore struct {
	catalog.Store
	failName string
}

func (s failingStore) UpsertProduct(ctx context.Context, manufacturerID string, p *models.Product) (string, error) {
	if p.Name == s.failName {
		return "", errors.New("constraint violation")
	}
	return s.Store.UpsertProduct(ctx, manufacturerID, p)
}

func TestRunWriteFailureIsIsolated(t *testing.T) {
	site := testSite()
	site.Set(siteRoot+"/trailers/magnitude", `<html><body><h1>Magnitude 55H</h1></body></html>`)
	profile := testProfile()
	profile.Rules.Known = []string{siteRoot + "/trailers/magnitude"}

	store := failingStore{Store: catalog.NewMemoryStore(), failName: "850XT Lowboy"}
	o, err := New(profile, Options{Store: store, Navigator: site})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Scraped != 2 || result.Upserted != 1 || result.Errors != 2 {
		t.Fatalf("scraped=%d upserted=%d errors=%d, want 2/1/2", result.Scraped, result.Upserted, result.Errors)
	}
	if result.ProductCount != 1 {
		t.Fatalf("product_count=%d, want 1", result.ProductCount)
	}
}

func TestRunSynthesizesUnresolvedLines(t *testing.T) {
	profile := testProfile()
	profile.SynthesizeFallbacks = true
	profile.Table = knowledge.Table{Lines: []knowledge.Line{
		{
			ID:       "850XT",
			Pattern:  regexp.MustCompile(`(?i)850\s*xt`),
			Defaults: knowledge.Defaults{Name: "850XT Lowboy", TonnageMin: 55, TonnageMax: 55},
		},
		{
			ID:      "MEGAMAX",
			Pattern: regexp.MustCompile(`(?i)megamax`),
			Defaults: knowledge.Defaults{
				Name:          "MegaMAX 55",
				ProductType:   models.ProductTypeLowboy,
				GooseneckType: models.GooseneckHydraulicDetachable,
				TonnageMin:    55,
				TonnageMax:    55,
				Specs:         []knowledge.Spec{{Key: "Capacity", Value: "55 Ton"}},
			},
		},
	}}

	ctx := context.Background()
	store := catalog.NewMemoryStore()
	o, err := New(profile, Options{Store: store, Navigator: testSite()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Synthesized != 1 || result.Upserted != 2 || result.ProductCount != 2 {
		t.Fatalf("synthesized=%d upserted=%d count=%d, want 1/2/2", result.Synthesized, result.Upserted, result.ProductCount)
	}

	m, _ := store.Manufacturer(ctx, "example")
	products, _ := store.Products(ctx, m.ID)
	var scraped, synthesized *models.Product
	for i := range products {
		switch products[i].Slug {
		case "850xt-lowboy":
			scraped = &products[i]
		case "megamax-55":
			synthesized = &products[i]
		}
	}
	if scraped == nil || synthesized == nil {
		t.Fatalf("unexpected products %+v", products)
	}
	// The scraped capacity beats the line default.
	if *scraped.TonnageMin != 50 {
		t.Fatalf("scraped tonnage=%d, want 50", *scraped.TonnageMin)
	}
	if *synthesized.TonnageMin != 55 || synthesized.GooseneckType != models.GooseneckHydraulicDetachable {
		t.Fatalf("synthesized=%+v", synthesized)
	}
	specs, _ := store.Specs(ctx, synthesized.ID)
	if len(specs) != 1 {
		t.Fatalf("synthesized specs=%d, want 1", len(specs))
	}
}

func TestRunExportsUpsertedProducts(t *testing.T) {
	writer := &mockWriter{}
	exporter := NewExporter(writer, 10)
	exporter.Start(1)

	o, err := New(testProfile(), Options{Store: catalog.NewMemoryStore(), Navigator: testSite(), Sink: exporter})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("close exporter: %v", err)
	}

	if got := writer.totalWritten(); got != 1 {
		t.Fatalf("exported=%d, want 1", got)
	}
	if writer.batches[0][0].ID == "" {
		t.Fatal("exported product has no id")
	}
}

func TestRunCancelledStillReconciles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := catalog.NewMemoryStore()
	site := &cancelAfter{StaticNavigator: testSite(), after: 2, cancel: cancel}

	o, err := New(testProfile(), Options{Store: store, Navigator: site})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	result, err := o.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if result.Upserted != 1 || result.ProductCount != 1 {
		t.Fatalf("upserted=%d count=%d, want partial 1/1", result.Upserted, result.ProductCount)
	}
	m, _ := store.Manufacturer(context.Background(), "example")
	if m.ProductCount != 1 {
		t.Fatalf("product_count=%d, want 1", m.ProductCount)
	}
}

// cancelAfter cancels the run once it has served after pages.
type cancelAfter struct {
	*scraper.StaticNavigator
	after  int
	served int
	cancel context.CancelFunc
}

func (c *cancelAfter) Goto(ctx context.Context, rawURL string) (*scraper.Page, error) {
	page, err := c.StaticNavigator.Goto(ctx, rawURL)
	c.served++
	if c.served == c.after {
		c.cancel()
	}
	return page, err
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(testProfile(), Options{Navigator: testSite()}); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := New(testProfile(), Options{Store: catalog.NewMemoryStore()}); err == nil {
		t.Fatal("expected error for nil navigator")
	}
}
