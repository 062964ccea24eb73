package extract

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
)

const minImageWidth = 50

var (
	defaultImageExclude = []string{"logo", "icon", "favicon", "gravatar", "plugin"}
	excludedImageExts   = []string{".svg", ".gif"}

	backgroundImagePattern = regexp.MustCompile(`(?i)background(?:-image)?\s*:[^;]*url\(\s*['"]?([^'")]+?)['"]?\s*\)`)
)

// Images collects <img> candidates followed by inline background-image candidates,
// in document order, filtered and deduplicated by URL without its query string.
func Images(doc *goquery.Document, pageURL string, opts Options) []models.ImageCandidate {
	base, _ := url.Parse(pageURL)
	filter := imageFilter{base: base, opts: opts}

	var images []models.ImageCandidate
	seen := make(map[string]struct{})
	add := func(raw, alt string) {
		u, ok := filter.accept(raw)
		if !ok {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		images = append(images, models.ImageCandidate{URL: u, Alt: alt})
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if width, ok := img.Attr("width"); ok {
			if w, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(width), "px")); err == nil && w < minImageWidth {
				return
			}
		}
		alt, _ := img.Attr("alt")
		add(imageSource(img), parser.Flatten(alt))
	})

	doc.Find("[style]").Each(func(_ int, el *goquery.Selection) {
		style, _ := el.Attr("style")
		m := backgroundImagePattern.FindStringSubmatch(style)
		if m == nil {
			return
		}
		alt, _ := el.Attr("aria-label")
		if alt == "" {
			alt, _ = el.Attr("title")
		}
		add(m[1], parser.Flatten(alt))
	})

	return images
}

// imageSource resolves the real source of a possibly lazy-loaded image.
func imageSource(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v, ok := img.Attr(attr); ok {
			v = strings.TrimSpace(v)
			if v != "" && !strings.HasPrefix(v, "data:") {
				return v
			}
		}
	}
	if srcset, ok := img.Attr("srcset"); ok {
		first, _, _ := strings.Cut(strings.TrimSpace(srcset), ",")
		if fields := strings.Fields(first); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

type imageFilter struct {
	base *url.URL
	opts Options
}

// accept resolves raw against the page URL and returns it without query or fragment.
func (f imageFilter) accept(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	u := ref
	if f.base != nil {
		u = f.base.ResolveReference(ref)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""

	lower := strings.ToLower(u.String())
	for _, bad := range defaultImageExclude {
		if strings.Contains(lower, bad) {
			return "", false
		}
	}
	for _, bad := range f.opts.ImageExclude {
		if bad != "" && strings.Contains(lower, bad) {
			return "", false
		}
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, bad := range excludedImageExts {
		if ext == bad {
			return "", false
		}
	}

	if !f.allowed(u) {
		return "", false
	}
	return u.String(), true
}

// allowed applies the host/path allow-list. With no allow-list, only images on the
// page's own host pass.
func (f imageFilter) allowed(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if len(f.opts.ImageHosts) == 0 && len(f.opts.ImagePaths) == 0 {
		return f.base != nil && strings.EqualFold(host, f.base.Hostname())
	}
	for _, h := range f.opts.ImageHosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	for _, p := range f.opts.ImagePaths {
		if p != "" && strings.Contains(u.Path, p) {
			return true
		}
	}
	return false
}
