// Package extract lifts candidate product fields out of an arbitrary marketing page.
//
// Every field is produced by an ordered list of strategies; the first strategy that
// yields usable content wins. Spec pairs are the exception: all four spec strategies
// run and their results are concatenated, leaving deduplication to the categorizer.
package extract

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
)

// ErrNoProduct means the page has no product name and is not a product page.
var ErrNoProduct = errors.New("no product found on page")

const (
	minParagraphLength  = 20
	shortDescriptionLen = 300
	minFeatureLength    = 10
	maxFeatureLength    = 300
)

// Strategy tries to produce a value from a document.
type Strategy[T any] func(doc *goquery.Document) (T, bool)

// FirstSuccessful returns a strategy that runs strategies in order and returns the
// first result reported as ok.
func FirstSuccessful[T any](strategies ...Strategy[T]) Strategy[T] {
	return func(doc *goquery.Document) (T, bool) {
		for _, strategy := range strategies {
			if v, ok := strategy(doc); ok {
				return v, true
			}
		}
		var zero T
		return zero, false
	}
}

// Options tunes the extractor for a site.
type Options struct {
	NameSelectors        []string
	TaglineSelectors     []string
	DescriptionSelectors []string
	// ImageHosts are allowed image hosts; subdomains match too.
	ImageHosts []string
	// ImagePaths are allowed path fragments such as "/wp-content/uploads/".
	ImagePaths []string
	// ImageExclude adds lowercase URL fragments to the default exclusion list.
	ImageExclude []string
}

// DefaultOptions returns selectors that fit most WordPress-style manufacturer sites.
func DefaultOptions() Options {
	return Options{
		NameSelectors: []string{"h1"},
		TaglineSelectors: []string{
			".product-subtitle",
			".subtitle",
			".tagline",
			".entry-subtitle",
			"h1 + h2",
			"h1 + p strong",
			".hero h2",
		},
		DescriptionSelectors: []string{
			".product-description",
			".product-content",
			".entry-content",
			"article",
			"main",
			".content",
			"#content",
		},
	}
}

// Prose is a description plus its short form.
type Prose struct {
	Description      string
	ShortDescription string
}

// Extractor runs the extraction strategies.
type Extractor struct {
	opts        Options
	name        Strategy[string]
	tagline     Strategy[string]
	description Strategy[Prose]
}

// New builds an Extractor. Empty selector lists fall back to DefaultOptions.
func New(opts Options) *Extractor {
	defaults := DefaultOptions()
	if len(opts.NameSelectors) == 0 {
		opts.NameSelectors = defaults.NameSelectors
	}
	if len(opts.TaglineSelectors) == 0 {
		opts.TaglineSelectors = defaults.TaglineSelectors
	}
	if len(opts.DescriptionSelectors) == 0 {
		opts.DescriptionSelectors = defaults.DescriptionSelectors
	}

	e := &Extractor{opts: opts}

	names := make([]Strategy[string], 0, len(opts.NameSelectors))
	for _, sel := range opts.NameSelectors {
		names = append(names, FirstText(sel))
	}
	e.name = FirstSuccessful(names...)

	taglines := make([]Strategy[string], 0, len(opts.TaglineSelectors))
	for _, sel := range opts.TaglineSelectors {
		taglines = append(taglines, FirstText(sel))
	}
	e.tagline = FirstSuccessful(taglines...)

	containers := make([]Strategy[Prose], 0, len(opts.DescriptionSelectors))
	for _, sel := range opts.DescriptionSelectors {
		containers = append(containers, Paragraphs(sel))
	}
	e.description = FirstSuccessful(containers...)

	return e
}

// Extract returns the candidate fields of the page at pageURL. It returns
// ErrNoProduct when no name can be found.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) (*models.PageData, error) {
	name, ok := e.name(doc)
	if !ok {
		return nil, ErrNoProduct
	}

	data := &models.PageData{
		URL:      pageURL,
		Name:     name,
		Specs:    Specs(doc),
		Features: Features(doc),
		Images:   Images(doc, pageURL, e.opts),
	}
	if tagline, ok := e.tagline(doc); ok && tagline != name {
		data.Tagline = tagline
	}
	if prose, ok := e.description(doc); ok {
		data.Description = prose.Description
		data.ShortDescription = prose.ShortDescription
	}
	return data, nil
}

// FirstText yields the cleaned text of the first non-empty element matching selector.
func FirstText(selector string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		var text string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = parser.Flatten(s.Text())
			return text == ""
		})
		return text, text != ""
	}
}

// Paragraphs yields the paragraphs longer than 20 characters inside the first
// element matching selector. Paragraphs are joined with a blank line.
func Paragraphs(selector string) Strategy[Prose] {
	return func(doc *goquery.Document) (Prose, bool) {
		var paragraphs []string
		doc.Find(selector).First().Find("p").Each(func(_ int, s *goquery.Selection) {
			text := parser.CleanText(s.Text())
			if len([]rune(text)) > minParagraphLength {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) == 0 {
			return Prose{}, false
		}
		return Prose{
			Description:      strings.Join(paragraphs, "\n\n"),
			ShortDescription: parser.Truncate(paragraphs[0], shortDescriptionLen),
		}, true
	}
}

// Features returns every list item between 10 and 300 characters, in document order.
func Features(doc *goquery.Document) []string {
	var features []string
	seen := make(map[string]struct{})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		text := parser.Flatten(s.Text())
		n := len([]rune(text))
		if n < minFeatureLength || n > maxFeatureLength {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		features = append(features, text)
	})
	return features
}
