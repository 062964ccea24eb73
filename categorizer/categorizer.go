// Package categorizer classifies raw spec pairs into display categories and infers units.
package categorizer

import (
	"regexp"
	"strings"

	"github.com/aluiziolira/trailer-catalog/models"
)

// Categories shown on product pages.
const (
	Capacity    = "Capacity"
	Dimensions  = "Dimensions"
	RunningGear = "Running Gear"
	Gooseneck   = "Gooseneck"
	Hydraulics  = "Hydraulics"
	Decking     = "Decking"
	Electrical  = "Electrical"
	Frame       = "Frame"
	Finish      = "Finish"
	Safety      = "Safety"
	Warranty    = "Warranty"
	Options     = "Options"
	General     = "General"
	Features    = "Features"
)

// Rule maps keys matching Pattern to Category.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
}

// DefaultRules is the scan order. The first rule whose pattern matches the lowercased
// key wins, so a key mentioning both "deck" and "axle" lands in Dimensions.
var DefaultRules = []Rule{
	{Capacity, regexp.MustCompile(`capacity|payload|tonnage|\btons?\b|weight|gvwr|gawr|rating|concentrated`)},
	{Dimensions, regexp.MustCompile(`\bdeck\b|height|length|width|clearance|dimension|swing radius|overhang|well`)},
	{RunningGear, regexp.MustCompile(`axle|suspension|tire|tyre|wheel|brake|hub|spread|air ride|spring`)},
	{Gooseneck, regexp.MustCompile(`gooseneck|goose neck|kingpin|king pin|hitch|fifth wheel|neck|coupler`)},
	{Hydraulics, regexp.MustCompile(`hydraulic|cylinder|pump|wet kit|valve|pto`)},
	{Decking, regexp.MustCompile(`decking|floor|wood|oak|apitong|hardwood|platform|plank|planking`)},
	{Electrical, regexp.MustCompile(`light|electric|wiring|wire|harness|\bled\b|battery|\babs\b`)},
	{Frame, regexp.MustCompile(`frame|beam|steel|structural|crossmember|cross member|main rail|flange|web`)},
	{Finish, regexp.MustCompile(`paint|finish|coating|primer|blast|galvaniz|color|colour`)},
	{Safety, regexp.MustCompile(`safety|chain|tie.?down|d-ring|binder|reflect|conspicuity|mud flap`)},
	{Warranty, regexp.MustCompile(`warranty|guarantee`)},
	{Options, regexp.MustCompile(`option|accessor|upgrade|available|package`)},
}

var (
	unitLbs    = regexp.MustCompile(`(?i)\blbs?\b|\bpounds?\b`)
	unitTons   = regexp.MustCompile(`(?i)\btons?\b`)
	unitInches = regexp.MustCompile(`(?i)"|″|”|\binch(?:es)?\b|\d\s*in\b`)
	unitFeet   = regexp.MustCompile(`(?i)'|′|’|\bft\b|\bfeet\b|\bfoot\b`)
)

// Categorizer turns raw key/value pairs into categorized specs.
type Categorizer struct {
	rules []Rule
}

// New returns a Categorizer using rules, or DefaultRules when rules is empty.
func New(rules ...Rule) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Categorizer{rules: rules}
}

// Categorize trims and classifies pairs. Exact (key, value) duplicates are dropped,
// keeping the first occurrence; pairs with an empty key or value are skipped.
func (c *Categorizer) Categorize(pairs []models.RawSpecPair) []models.ProductSpec {
	seen := make(map[models.RawSpecPair]struct{}, len(pairs))
	specs := make([]models.ProductSpec, 0, len(pairs))
	for _, pair := range pairs {
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}

		key := strings.TrimSpace(pair.Key)
		value := strings.TrimSpace(pair.Value)
		if key == "" || value == "" {
			continue
		}
		specs = append(specs, models.ProductSpec{
			Category:  c.Category(key),
			Key:       key,
			Value:     value,
			Unit:      InferUnit(value),
			SortOrder: len(specs),
		})
	}
	return specs
}

// Category returns the category of key using the configured scan order.
func (c *Categorizer) Category(key string) string {
	lower := strings.ToLower(key)
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(lower) {
			return rule.Category
		}
	}
	return General
}

// InferUnit guesses the unit of a spec value. It returns "" when nothing matches.
func InferUnit(value string) string {
	switch {
	case unitLbs.MatchString(value):
		return "lbs"
	case unitTons.MatchString(value):
		return "tons"
	case unitInches.MatchString(value):
		return "in"
	case unitFeet.MatchString(value):
		return "ft"
	default:
		return ""
	}
}
