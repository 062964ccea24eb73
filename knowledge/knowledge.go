// Package knowledge holds curated, read-only facts about manufacturer product lines.
// Tables are plain values handed to the builder; nothing here is global or mutable.
package knowledge

import (
	"regexp"
	"strings"

	"github.com/aluiziolira/trailer-catalog/models"
)

// Spec is a fallback spec row.
type Spec struct {
	Category string
	Key      string
	Value    string
	Unit     string
}

// Defaults are the authoritative fallback values of one product line. Zero values
// mean "unknown" and never fill a field.
type Defaults struct {
	Name             string
	Series           string
	ModelNumber      string
	Tagline          string
	Description      string
	ShortDescription string
	SourceURL        string

	ProductType   models.ProductType
	GooseneckType models.GooseneckType

	TonnageMin              int
	TonnageMax              int
	DeckHeightInches        float64
	DeckLengthFeet          float64
	OverallLengthFeet       float64
	AxleCount               int
	EmptyWeightLbs          int
	GVWRLbs                 int
	ConcentratedCapacityLbs int

	Specs []Spec
}

// Line is a product line recognized by a pattern over "name url".
type Line struct {
	ID       string
	Pattern  *regexp.Regexp
	Defaults Defaults
}

// SeriesRule assigns Series when Pattern matches the name or URL.
type SeriesRule struct {
	Pattern *regexp.Regexp
	Series  string
}

// Table is a manufacturer's knowledge: its product lines in match order plus
// naming conventions.
type Table struct {
	Lines  []Line
	Series []SeriesRule
	// ModelNumber extracts a model number from the product name; group 1 wins if present.
	ModelNumber *regexp.Regexp
}

// Lookup returns the first line whose pattern matches name or pageURL.
func (t Table) Lookup(name, pageURL string) (Line, bool) {
	subject := strings.TrimSpace(name + " " + pageURL)
	for _, line := range t.Lines {
		if line.Pattern != nil && line.Pattern.MatchString(subject) {
			return line, true
		}
	}
	return Line{}, false
}

// SeriesFor returns the literal series signal in name or pageURL, if any.
func (t Table) SeriesFor(name, pageURL string) (string, bool) {
	subject := name + " " + pageURL
	for _, rule := range t.Series {
		if rule.Pattern.MatchString(subject) {
			return rule.Series, true
		}
	}
	return "", false
}

// ModelNumberFor applies the table's model number pattern to name.
func (t Table) ModelNumberFor(name string) (string, bool) {
	if t.ModelNumber == nil {
		return "", false
	}
	m := t.ModelNumber.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	if len(m) > 1 && m[1] != "" {
		return strings.TrimSpace(m[1]), true
	}
	return strings.TrimSpace(m[0]), true
}

// TypeRule maps a literal phrase to a product type.
type TypeRule struct {
	Pattern *regexp.Regexp
	Type    models.ProductType
}

// GooseneckRule maps a literal phrase to a gooseneck type.
type GooseneckRule struct {
	Pattern *regexp.Regexp
	Type    models.GooseneckType
}

// TypeRules classify product type from name and URL text; first match wins.
var TypeRules = []TypeRule{
	{regexp.MustCompile(`(?i)traveling[\s-]?axle|travel[\s-]?axle`), models.ProductTypeTravelingAxle},
	{regexp.MustCompile(`(?i)tag[\s-]?along|tag[\s-]?trailer`), models.ProductTypeTagAlong},
	{regexp.MustCompile(`(?i)\brgn\b|removable[\s-]gooseneck`), models.ProductTypeRGN},
	{regexp.MustCompile(`(?i)double[\s-]?drop`), models.ProductTypeDoubleDrop},
	{regexp.MustCompile(`(?i)step[\s-]?deck|drop[\s-]?deck|single[\s-]?drop`), models.ProductTypeStepDeck},
	{regexp.MustCompile(`(?i)extendable|stretch|\bext\b`), models.ProductTypeExtendable},
	{regexp.MustCompile(`(?i)modular|dolly|jeep|stinger|booster`), models.ProductTypeModular},
	{regexp.MustCompile(`(?i)flat[\s-]?bed|flatdeck|flat[\s-]deck`), models.ProductTypeFlatbed},
	{regexp.MustCompile(`(?i)low[\s-]?boy|lowbed|low[\s-]?bed`), models.ProductTypeLowboy},
}

// GooseneckRules classify gooseneck type from name and URL text; first match wins.
var GooseneckRules = []GooseneckRule{
	{regexp.MustCompile(`(?i)non[\s-]?ground[\s-]?bearing|\bngb\b`), models.GooseneckNonGroundBearing},
	{regexp.MustCompile(`(?i)hydraulic[\s-]?detach|\bhdg\b`), models.GooseneckHydraulicDetachable},
	{regexp.MustCompile(`(?i)mechanical[\s-]?detach|\bmdg\b`), models.GooseneckMechanicalDetachable},
	{regexp.MustCompile(`(?i)folding[\s-]?(?:goose)?neck|\bfold(?:ing)?\b`), models.GooseneckFolding},
	{regexp.MustCompile(`(?i)fixed[\s-]?(?:goose)?neck|\bfg\b`), models.GooseneckFixed},
}

// ClassifyType returns the first literal product type signal in text.
func ClassifyType(text string) (models.ProductType, bool) {
	for _, rule := range TypeRules {
		if rule.Pattern.MatchString(text) {
			return rule.Type, true
		}
	}
	return "", false
}

// ClassifyGooseneck returns the first literal gooseneck signal in text.
func ClassifyGooseneck(text string) (models.GooseneckType, bool) {
	for _, rule := range GooseneckRules {
		if rule.Pattern.MatchString(text) {
			return rule.Type, true
		}
	}
	return "", false
}
