// Package builder fuses extracted page data, categorized specs and product line
// knowledge into one catalog entry. Scraped values always win; knowledge only fills
// what scraping left empty.
package builder

import (
	"errors"
	"regexp"
	"strings"

	"github.com/aluiziolira/trailer-catalog/categorizer"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
)

// ErrNoName means neither the page nor the knowledge table supplies a usable name.
var ErrNoName = errors.New("no usable product name")

const featureSpecKey = "Feature"

// DefaultFeatureKeywords select feature bullets that become Features specs.
var DefaultFeatureKeywords = regexp.MustCompile(`(?i)axle|capacity|\btons?\b|hydraulic|gooseneck|deck|suspension|tires?\b|brakes?\b|winch|ramps?\b|outrigger|frame|beam|lbs|pounds`)

// Options configures a Builder.
type Options struct {
	Table knowledge.Table
	// GenericTitles are site-wide titles that are never product names.
	GenericTitles   []string
	Categorizer     *categorizer.Categorizer
	FeatureKeywords *regexp.Regexp
}

// Builder turns PageData into catalog entries.
type Builder struct {
	table           knowledge.Table
	genericTitles   []string
	categorizer     *categorizer.Categorizer
	featureKeywords *regexp.Regexp
}

// New returns a Builder with defaults for unset options.
func New(opts Options) *Builder {
	if opts.Categorizer == nil {
		opts.Categorizer = categorizer.New()
	}
	if opts.FeatureKeywords == nil {
		opts.FeatureKeywords = DefaultFeatureKeywords
	}
	return &Builder{
		table:           opts.Table,
		genericTitles:   opts.GenericTitles,
		categorizer:     opts.Categorizer,
		featureKeywords: opts.FeatureKeywords,
	}
}

// Build produces the catalog entry for one scraped page. The second return value is
// the ID of the knowledge line the page resolved to, or "".
func (b *Builder) Build(manufacturerID string, page *models.PageData) (*models.CatalogEntry, string, error) {
	line, matched := b.table.Lookup(page.Name, page.URL)
	var defaults *knowledge.Defaults
	if matched {
		defaults = &line.Defaults
	}

	name := parser.Flatten(page.Name)
	if parser.IsTrivial(name, b.genericTitles...) {
		name = ""
		if defaults != nil {
			name = defaults.Name
		}
	}
	if name == "" {
		return nil, "", ErrNoName
	}

	ev := evidence{
		pairs:    page.Specs,
		text:     searchText(page),
		defaults: defaults,
	}

	product := &models.Product{
		ManufacturerID: manufacturerID,
		Name:           name,
		Slug:           parser.Slugify(name),
		SourceURL:      page.URL,
		IsActive:       true,
	}
	b.fillText(product, page, defaults)
	b.fillNumbers(product, ev)
	b.classify(product, page, ev)

	entry := &models.CatalogEntry{
		Product: product,
		Images:  buildImages(page),
		Specs:   b.buildSpecs(page, defaults),
	}
	return entry, line.ID, nil
}

// Synthesize builds an entry for a product line from knowledge alone, for lines
// whose page could not be scraped.
func (b *Builder) Synthesize(manufacturerID string, line knowledge.Line) *models.CatalogEntry {
	d := line.Defaults
	name := d.Name
	if name == "" {
		name = line.ID
	}
	product := &models.Product{
		ManufacturerID:   manufacturerID,
		Name:             name,
		Slug:             parser.Slugify(name),
		Tagline:          d.Tagline,
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		SourceURL:        d.SourceURL,
		IsActive:         true,
	}
	if product.ShortDescription == "" && d.Description != "" {
		product.ShortDescription = parser.Truncate(firstParagraph(d.Description), 300)
	}

	ev := evidence{defaults: &d}
	b.fillNumbers(product, ev)
	b.classify(product, &models.PageData{Name: name, URL: d.SourceURL}, ev)

	return &models.CatalogEntry{
		Product: product,
		Specs:   b.mergeFallbackSpecs(nil, d.Specs),
	}
}

func (b *Builder) fillText(p *models.Product, page *models.PageData, d *knowledge.Defaults) {
	p.Tagline = parser.Flatten(page.Tagline)
	if p.Tagline == "" && d != nil {
		p.Tagline = d.Tagline
	}

	p.Description = parser.CleanText(page.Description)
	p.ShortDescription = parser.CleanText(page.ShortDescription)
	switch {
	case p.Description != "":
	case len(page.Features) > 0:
		p.Description = strings.Join(page.Features, "\n")
	case d != nil:
		p.Description = d.Description
		p.ShortDescription = d.ShortDescription
	}
	if p.ShortDescription == "" && p.Description != "" {
		p.ShortDescription = parser.Truncate(firstParagraph(p.Description), 300)
	}
}

func (b *Builder) fillNumbers(p *models.Product, ev evidence) {
	tonnage := resolveTonnage(ev)
	p.TonnageMin, p.TonnageMax = tonnage.Min, tonnage.Max
	p.DeckHeightInches = deckHeightField.resolve(ev)
	p.DeckLengthFeet = deckLengthField.resolve(ev)
	p.OverallLengthFeet = overallLengthField.resolve(ev)
	p.AxleCount = axleCountField.resolve(ev)
	p.EmptyWeightLbs = emptyWeightField.resolve(ev)
	p.GVWRLbs = gvwrField.resolve(ev)
	p.ConcentratedCapacityLbs = concentratedField.resolve(ev)
}

// classify resolves the enum and naming fields. Literal signals in the name or URL
// come first, then structured specs, then a scan of the page text. The line default
// applies only when the page carries no literal signal at all.
func (b *Builder) classify(p *models.Product, page *models.PageData, ev evidence) {
	nameURL := page.Name + " " + page.URL
	d := ev.defaults

	p.ProductType = models.ProductTypeOther
	if t, ok := knowledge.ClassifyType(nameURL); ok {
		p.ProductType = t
	} else if t, ok := classifyTypeFromSpecs(ev.pairs); ok {
		p.ProductType = t
	} else if t, ok := knowledge.ClassifyType(ev.text); ok {
		p.ProductType = t
	} else if d != nil && d.ProductType != "" {
		p.ProductType = d.ProductType
	}

	if g, ok := knowledge.ClassifyGooseneck(nameURL); ok {
		p.GooseneckType = g
	} else if g, ok := classifyGooseneckFromSpecs(ev.pairs); ok {
		p.GooseneckType = g
	} else if g, ok := knowledge.ClassifyGooseneck(ev.text); ok {
		p.GooseneckType = g
	} else if d != nil && d.GooseneckType != "" {
		p.GooseneckType = d.GooseneckType
	}

	if s, ok := b.table.SeriesFor(page.Name, page.URL); ok {
		p.Series = &s
	} else if d != nil && d.Series != "" {
		s := d.Series
		p.Series = &s
	}

	if m, ok := modelNumberFromSpecs(ev.pairs); ok {
		p.ModelNumber = &m
	} else if m, ok := b.table.ModelNumberFor(page.Name); ok {
		p.ModelNumber = &m
	} else if d != nil && d.ModelNumber != "" {
		m := d.ModelNumber
		p.ModelNumber = &m
	}
}

func classifyTypeFromSpecs(pairs []models.RawSpecPair) (models.ProductType, bool) {
	for _, pair := range pairs {
		if typeKeys.MatchString(strings.ToLower(strings.TrimSpace(pair.Key))) {
			if t, ok := knowledge.ClassifyType(pair.Value); ok {
				return t, true
			}
		}
	}
	return "", false
}

func classifyGooseneckFromSpecs(pairs []models.RawSpecPair) (models.GooseneckType, bool) {
	for _, pair := range pairs {
		if gooseneckKeys.MatchString(strings.ToLower(strings.TrimSpace(pair.Key))) {
			if g, ok := knowledge.ClassifyGooseneck(pair.Key + " " + pair.Value); ok {
				return g, true
			}
		}
	}
	return "", false
}

func modelNumberFromSpecs(pairs []models.RawSpecPair) (string, bool) {
	for _, pair := range pairs {
		if modelNumberKeys.MatchString(strings.ToLower(strings.TrimSpace(pair.Key))) {
			if v := parser.Flatten(pair.Value); v != "" && len(v) <= 50 {
				return v, true
			}
		}
	}
	return "", false
}

// buildSpecs categorizes scraped pairs, adds keyword-bearing feature bullets and
// appends fallback specs whose key is not already present.
func (b *Builder) buildSpecs(page *models.PageData, d *knowledge.Defaults) []models.ProductSpec {
	specs := b.categorizer.Categorize(page.Specs)

	seen := make(map[string]struct{})
	for _, feature := range page.Features {
		if !b.featureKeywords.MatchString(feature) {
			continue
		}
		if _, dup := seen[feature]; dup {
			continue
		}
		seen[feature] = struct{}{}
		specs = append(specs, models.ProductSpec{
			Category:  categorizer.Features,
			Key:       featureSpecKey,
			Value:     feature,
			Unit:      categorizer.InferUnit(feature),
			SortOrder: len(specs),
		})
	}

	if d == nil {
		return specs
	}
	return b.mergeFallbackSpecs(specs, d.Specs)
}

func (b *Builder) mergeFallbackSpecs(specs []models.ProductSpec, fallback []knowledge.Spec) []models.ProductSpec {
	present := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		present[strings.ToLower(s.Key)] = struct{}{}
	}
	for _, f := range fallback {
		key := strings.ToLower(strings.TrimSpace(f.Key))
		if key == "" || strings.TrimSpace(f.Value) == "" {
			continue
		}
		if _, ok := present[key]; ok {
			continue
		}
		present[key] = struct{}{}

		category := f.Category
		if category == "" {
			category = b.categorizer.Category(f.Key)
		}
		unit := f.Unit
		if unit == "" {
			unit = categorizer.InferUnit(f.Value)
		}
		specs = append(specs, models.ProductSpec{
			Category:  category,
			Key:       strings.TrimSpace(f.Key),
			Value:     strings.TrimSpace(f.Value),
			Unit:      unit,
			SortOrder: len(specs),
		})
	}
	return specs
}

func buildImages(page *models.PageData) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(page.Images))
	for i, candidate := range page.Images {
		alt := candidate.Alt
		if alt == "" {
			alt = page.Name
		}
		images = append(images, models.ProductImage{
			URL:       candidate.URL,
			AltText:   alt,
			SortOrder: i,
			IsPrimary: i == 0,
			SourceURL: page.URL,
		})
	}
	return images
}

// searchText is the haystack for free-text field scans.
func searchText(page *models.PageData) string {
	var sb strings.Builder
	sb.WriteString(page.Name)
	sb.WriteString("\n")
	sb.WriteString(page.Tagline)
	sb.WriteString("\n")
	sb.WriteString(page.Description)
	for _, pair := range page.Specs {
		sb.WriteString("\n")
		sb.WriteString(pair.Key)
		sb.WriteString(": ")
		sb.WriteString(pair.Value)
	}
	for _, feature := range page.Features {
		sb.WriteString("\n")
		sb.WriteString(feature)
	}
	return sb.String()
}

func firstParagraph(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(first)
}
