package manufacturers

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/aluiziolira/trailer-catalog/builder"
	"github.com/aluiziolira/trailer-catalog/catalog"
	"github.com/aluiziolira/trailer-catalog/parser"
	"github.com/aluiziolira/trailer-catalog/pipeline"
	"github.com/aluiziolira/trailer-catalog/scraper"
)

func TestRegistryOrder(t *testing.T) {
	want := []string{"talbert", "fontaine", "xl-specialized", "trail-king", "eager-beaver", "landoll"}
	got := Slugs()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("slugs=%v, want %v", got, want)
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("landoll")
	if !ok || p.Name != "Landoll" {
		t.Fatalf("Lookup(landoll)=%q/%v", p.Name, ok)
	}
	if _, ok := Lookup("acme"); ok {
		t.Fatal("unknown slug must not resolve")
	}
}

func TestRegistryReturnsFreshProfiles(t *testing.T) {
	first := Registry()
	first[0].Seeds[0] = "https://mutated.test/"
	first[0].Table.Lines = nil

	second := Registry()
	if second[0].Seeds[0] == "https://mutated.test/" || len(second[0].Table.Lines) == 0 {
		t.Fatal("registry profiles share state between calls")
	}
}

func TestProfilesAreWellFormed(t *testing.T) {
	for _, p := range Registry() {
		t.Run(p.Slug, func(t *testing.T) {
			if p.Slug != parser.Slugify(p.Slug) {
				t.Fatalf("slug %q is not in slug form", p.Slug)
			}
			if len(p.Seeds) == 0 {
				t.Fatal("no seeds")
			}
			if p.DelayMin <= 0 || p.DelayMax < p.DelayMin {
				t.Fatalf("delay range %s..%s", p.DelayMin, p.DelayMax)
			}
			for _, seed := range append(append([]string{}, p.Seeds...), p.Rules.Known...) {
				u, err := url.Parse(seed)
				if err != nil {
					t.Fatalf("seed %q: %v", seed, err)
				}
				if !onDomain(u.Hostname(), p.Rules.AllowedDomains) {
					t.Fatalf("seed %q is outside %v", seed, p.Rules.AllowedDomains)
				}
			}
		})
	}
}

func onDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Every line must be found again from its own default name, otherwise an earlier
// pattern shadows it.
func TestLinesResolveFromTheirOwnName(t *testing.T) {
	for _, p := range Registry() {
		slugs := make(map[string]string)
		for _, line := range p.Table.Lines {
			got, ok := p.Table.Lookup(line.Defaults.Name, "")
			if !ok || got.ID != line.ID {
				t.Fatalf("%s: Lookup(%q) = %q/%v, want %q", p.Slug, line.Defaults.Name, got.ID, ok, line.ID)
			}
			slug := parser.Slugify(line.Defaults.Name)
			if other, dup := slugs[slug]; dup {
				t.Fatalf("%s: lines %s and %s share slug %q", p.Slug, other, line.ID, slug)
			}
			slugs[slug] = line.ID
		}
	}
}

func TestSynthesizedLinesKeepDefaults(t *testing.T) {
	for _, p := range Registry() {
		b := builder.New(builder.Options{Table: p.Table})
		for _, line := range p.Table.Lines {
			entry := b.Synthesize("m-1", line)
			d := line.Defaults
			if entry.Product.ProductType != d.ProductType {
				t.Fatalf("%s/%s: type=%q, want %q", p.Slug, line.ID, entry.Product.ProductType, d.ProductType)
			}
			if d.TonnageMax > 0 && (entry.Product.TonnageMax == nil || *entry.Product.TonnageMax != d.TonnageMax) {
				t.Fatalf("%s/%s: tonnage_max=%v, want %d", p.Slug, line.ID, entry.Product.TonnageMax, d.TonnageMax)
			}
			if d.AxleCount > 0 && (entry.Product.AxleCount == nil || *entry.Product.AxleCount != d.AxleCount) {
				t.Fatalf("%s/%s: axle_count=%v, want %d", p.Slug, line.ID, entry.Product.AxleCount, d.AxleCount)
			}
		}
	}
}

func TestUnreachableSiteSynthesizesTable(t *testing.T) {
	profile, ok := Lookup("eager-beaver")
	if !ok {
		t.Fatal("eager-beaver not registered")
	}
	profile.DelayMin, profile.DelayMax = 0, 0

	store := catalog.NewMemoryStore()
	o, err := pipeline.New(profile, pipeline.Options{
		Store:     store,
		Navigator: scraper.NewStaticNavigator(nil),
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := len(profile.Table.Lines)
	if result.Discovered != len(profile.Rules.Fallback) {
		t.Fatalf("discovered=%d, want the %d fallback pages", result.Discovered, len(profile.Rules.Fallback))
	}
	if result.Scraped != 0 || result.Synthesized != lines || result.Upserted != lines {
		t.Fatalf("result=%+v, want %d synthesized products", result, lines)
	}
	if result.ProductCount != lines {
		t.Fatalf("product_count=%d, want %d", result.ProductCount, lines)
	}
}
