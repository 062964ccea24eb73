// Package manufacturers holds the per-manufacturer profiles the fleet runs: seed
// pages, relevance rules, extractor tuning and the curated product-line tables.
//
// Adding a manufacturer means adding one constructor to registry below; no code
// elsewhere changes.
package manufacturers

import (
	"regexp"
	"time"

	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

const (
	defaultDelayMin = 2 * time.Second
	defaultDelayMax = 4 * time.Second
)

// registry is the run order of the fleet.
var registry = []func() pipeline.Profile{
	talbert,
	fontaine,
	xlSpecialized,
	trailKing,
	eagerBeaver,
	landoll,
}

// Registry builds every profile in run order. Each call returns fresh values, so
// callers may modify what they get back.
func Registry() []pipeline.Profile {
	profiles := make([]pipeline.Profile, 0, len(registry))
	for _, build := range registry {
		profiles = append(profiles, build())
	}
	return profiles
}

// Slugs lists the registered manufacturer slugs in run order.
func Slugs() []string {
	profiles := Registry()
	slugs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

// Lookup returns the profile registered under slug.
func Lookup(slug string) (pipeline.Profile, bool) {
	for _, p := range Registry() {
		if p.Slug == slug {
			return p, true
		}
	}
	return pipeline.Profile{}, false
}

func line(id, pattern string, d knowledge.Defaults) knowledge.Line {
	return knowledge.Line{ID: id, Pattern: regexp.MustCompile(`(?i)` + pattern), Defaults: d}
}

func series(pattern, name string) knowledge.SeriesRule {
	return knowledge.SeriesRule{Pattern: regexp.MustCompile(`(?i)` + pattern), Series: name}
}

func spec(key, value, unit string) knowledge.Spec {
	return knowledge.Spec{Key: key, Value: value, Unit: unit}
}
