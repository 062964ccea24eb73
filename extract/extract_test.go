package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/trailer-catalog/models"
)

const pageURL = "https://www.example-trailers.com/trailers/55sa-lowboy/"

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestFirstSuccessful(t *testing.T) {
	var calls []string
	strategy := func(name string, ok bool) Strategy[string] {
		return func(*goquery.Document) (string, bool) {
			calls = append(calls, name)
			return name, ok
		}
	}

	got, ok := FirstSuccessful(strategy("a", false), strategy("b", true), strategy("c", true))(nil)
	if !ok || got != "b" {
		t.Fatalf("got %q/%v, want b/true", got, ok)
	}
	if strings.Join(calls, ",") != "a,b" {
		t.Fatalf("calls=%v, want a,b", calls)
	}

	if _, ok := FirstSuccessful[string]()(nil); ok {
		t.Fatal("empty combinator must fail")
	}
}

func TestExtractNoProduct(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1>  </h1><p>No heading here.</p></body></html>`)
	_, err := New(DefaultOptions()).Extract(doc, pageURL)
	if !errors.Is(err, ErrNoProduct) {
		t.Fatalf("err=%v, want ErrNoProduct", err)
	}
}

func TestExtractFullPage(t *testing.T) {
	html := `<html><body>
<header><img src="/wp-content/uploads/logo.png" alt="Logo"></header>
<h1>55SA Lowboy</h1>
<h2>Hydraulic detachable gooseneck</h2>
<div class="entry-content">
  <p>Short.</p>
  <p>The 55SA is a 55 ton hydraulic detachable gooseneck lowboy built for heavy equipment.</p>
  <p>Every unit ships with apitong decking and LED lights.</p>
</div>
<table>
  <tr><th>Capacity</th><td>55 Ton</td></tr>
  <tr><td>Deck Height</td><td>24"</td></tr>
  <tr><td>Only one cell</td></tr>
</table>
<dl><dt>Axles</dt><dd>3</dd><dt>Suspension:</dt><dd>Air ride</dd></dl>
<ul>
  <li>Deck Length: 26'</li>
  <li>Heavy-duty 3-axle air ride suspension</li>
  <li>ok</li>
</ul>
<p><strong>Empty Weight:</strong> 19,560 lbs<br><strong>Swing Radius</strong>: 90"</p>
<img data-src="/wp-content/uploads/55sa-side.jpg?resize=800" src="data:image/gif;base64,AAA" alt="55SA side">
<img src="/wp-content/uploads/55sa-side.jpg" alt="duplicate">
<img srcset="https://cdn.example-trailers.com/55sa-rear.jpg 800w, https://cdn.example-trailers.com/55sa-rear-2x.jpg 1600w">
<img src="/wp-content/uploads/tiny.jpg" width="20">
<img src="/wp-content/plugins/social/share.png">
<img src="https://tracker.other.com/pixel.jpg">
<div class="hero" style="background-image: url('/wp-content/uploads/55sa-hero.jpg')" aria-label="55SA hero"></div>
</body></html>`

	opts := DefaultOptions()
	opts.ImageHosts = []string{"example-trailers.com"}

	data, err := New(opts).Extract(mustDoc(t, html), pageURL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if data.Name != "55SA Lowboy" {
		t.Fatalf("name=%q", data.Name)
	}
	if data.Tagline != "Hydraulic detachable gooseneck" {
		t.Fatalf("tagline=%q", data.Tagline)
	}
	wantDesc := "The 55SA is a 55 ton hydraulic detachable gooseneck lowboy built for heavy equipment.\n\nEvery unit ships with apitong decking and LED lights."
	if data.Description != wantDesc {
		t.Fatalf("description=%q", data.Description)
	}
	if !strings.HasPrefix(data.ShortDescription, "The 55SA is a 55 ton") {
		t.Fatalf("short description=%q", data.ShortDescription)
	}

	for _, want := range []models.RawSpecPair{
		{Key: "Capacity", Value: "55 Ton"},
		{Key: "Deck Height", Value: `24"`},
		{Key: "Axles", Value: "3"},
		{Key: "Suspension", Value: "Air ride"},
		{Key: "Deck Length", Value: "26'"},
		{Key: "Empty Weight", Value: "19,560 lbs"},
		{Key: "Swing Radius", Value: `90"`},
	} {
		if !containsPair(data.Specs, want) {
			t.Errorf("missing spec %+v in %+v", want, data.Specs)
		}
	}

	if !containsString(data.Features, "Heavy-duty 3-axle air ride suspension") {
		t.Errorf("missing feature, got %v", data.Features)
	}
	if containsString(data.Features, "ok") {
		t.Errorf("short list item must not be a feature")
	}

	wantImages := []string{
		"https://www.example-trailers.com/wp-content/uploads/55sa-side.jpg",
		"https://cdn.example-trailers.com/55sa-rear.jpg",
		"https://www.example-trailers.com/wp-content/uploads/55sa-hero.jpg",
	}
	if len(data.Images) != len(wantImages) {
		t.Fatalf("images=%+v, want %v", data.Images, wantImages)
	}
	for i, want := range wantImages {
		if data.Images[i].URL != want {
			t.Errorf("image[%d]=%q, want %q", i, data.Images[i].URL, want)
		}
	}
	if data.Images[0].Alt != "55SA side" {
		t.Errorf("alt=%q", data.Images[0].Alt)
	}
	if data.Images[2].Alt != "55SA hero" {
		t.Errorf("background alt=%q", data.Images[2].Alt)
	}
}

func TestSpecStrategiesRunUnconditionally(t *testing.T) {
	doc := mustDoc(t, `<table><tr><td>Capacity</td><td>50 Ton</td></tr></table>
<ul><li>Capacity: 50 Ton</li></ul>`)

	pairs := Specs(doc)
	if len(pairs) != 2 {
		t.Fatalf("pairs=%+v, want the table and list pair both present", pairs)
	}
}

func TestListItemSpecsLabelLength(t *testing.T) {
	doc := mustDoc(t, `<ul>
<li>GV: 80,000 lbs</li>
<li>GVWR: 80,000 lbs</li>
<li>This label is far too long to be a specification label at all: value</li>
</ul>`)

	pairs := ListItemSpecs(doc)
	if len(pairs) != 1 || pairs[0].Key != "GVWR" || pairs[0].Value != "80,000 lbs" {
		t.Fatalf("pairs=%+v", pairs)
	}
}

func TestBoldLabelSpecsReadFollowingText(t *testing.T) {
	doc := mustDoc(t, `<p>Check our Capacity: rating chart first. <strong>Capacity:</strong> 50 Ton <b>Deck Height</b>: 24" <em>loaded</em><br>Call for pricing.</p>`)

	pairs := BoldLabelSpecs(doc)
	want := []models.RawSpecPair{
		{Key: "Capacity", Value: "50 Ton"},
		{Key: "Deck Height", Value: `24" loaded`},
	}
	if len(pairs) != len(want) {
		t.Fatalf("pairs=%+v, want %+v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair[%d]=%+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestDescriptionFallsThroughContainers(t *testing.T) {
	html := `<article><p>tiny</p></article>
<main><p>A main-section paragraph that is long enough to count.</p></main>`
	prose, ok := FirstSuccessful(Paragraphs(".missing"), Paragraphs("article"), Paragraphs("main"))(mustDoc(t, html))
	if !ok {
		t.Fatal("expected main paragraphs")
	}
	if prose.Description != "A main-section paragraph that is long enough to count." {
		t.Fatalf("description=%q", prose.Description)
	}
}

func TestDescriptionMissingIsNotAnError(t *testing.T) {
	data, err := New(Options{}).Extract(mustDoc(t, `<h1>Fixed Neck 35</h1>`), pageURL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if data.Description != "" || data.ShortDescription != "" {
		t.Fatalf("unexpected description %+v", data)
	}
}

func TestShortDescriptionTruncated(t *testing.T) {
	long := strings.Repeat("lowboy ", 80)
	prose, ok := Paragraphs("div")(mustDoc(t, `<div><p>`+long+`</p></div>`))
	if !ok {
		t.Fatal("expected paragraph")
	}
	if n := len([]rune(prose.ShortDescription)); n > 300 {
		t.Fatalf("short description has %d runes", n)
	}
}

func TestImagesSameHostWithoutAllowList(t *testing.T) {
	doc := mustDoc(t, `<img src="/uploads/a.jpg"><img src="https://elsewhere.com/b.jpg"><img src="/uploads/c.svg">`)
	images := Images(doc, pageURL, Options{})
	if len(images) != 1 || images[0].URL != "https://www.example-trailers.com/uploads/a.jpg" {
		t.Fatalf("images=%+v", images)
	}
}

func TestImagesPathAllowList(t *testing.T) {
	doc := mustDoc(t, `<img src="https://assets.hosting.net/site/wp-content/uploads/a.jpg"><img src="https://assets.hosting.net/other/b.jpg">`)
	images := Images(doc, pageURL, Options{ImagePaths: []string{"/wp-content/uploads/"}})
	if len(images) != 1 || !strings.HasSuffix(images[0].URL, "/a.jpg") {
		t.Fatalf("images=%+v", images)
	}
}

func containsPair(pairs []models.RawSpecPair, want models.RawSpecPair) bool {
	for _, p := range pairs {
		if p == want {
			return true
		}
	}
	return false
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
